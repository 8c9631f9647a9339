package geodb

import (
	"encoding/binary"
	"net"
	"strings"

	"github.com/relaymaps/relaygeo/utils"
)

// ParseIPv4 converts a dotted-quad literal into its 32-bit network-order
// integer form. Anything that is not a plain IPv4 address, including IPv6
// literals, is rejected with an InvalidAddressError.
func ParseIPv4(s string) (uint32, error) {
	if strings.ContainsRune(s, ':') {
		return 0, &utils.InvalidAddressError{}
	}

	ip := net.ParseIP(s)
	if ip == nil {
		return 0, &utils.InvalidAddressError{}
	}

	ip4 := ip.To4()
	if ip4 == nil {
		return 0, &utils.InvalidAddressError{}
	}

	return binary.BigEndian.Uint32(ip4), nil
}

// FormatIPv4 is the inverse of ParseIPv4.
func FormatIPv4(n uint32) string {
	ip := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(ip, n)

	return ip.String()
}
