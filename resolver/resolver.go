package resolver

import (
	"context"
	"net"
)

// Resolver resolves hostnames to IPv4 addresses. The interface exists so the
// pipeline can be exercised in tests without touching the network.
type Resolver interface {
	// LookupIPv4 returns the A records for host in resolver order. Callers
	// needing a single address take the first one; no preference ordering is
	// applied beyond what the resolver returns.
	LookupIPv4(ctx context.Context, host string) ([]string, error)
}

type netResolver struct {
	resolver *net.Resolver
}

// NewNetResolver returns a Resolver backed by the system DNS configuration.
func NewNetResolver() Resolver {
	return &netResolver{resolver: net.DefaultResolver}
}

func (nr *netResolver) LookupIPv4(ctx context.Context, host string) ([]string, error) {
	ips, err := nr.resolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, ip.String())
	}

	return addrs, nil
}
