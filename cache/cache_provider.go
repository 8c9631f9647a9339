package cache

import (
	"context"

	"github.com/relaymaps/relaygeo/geodb"
)

// Provider caches per-hostname locations across lookups.
type Provider interface {
	Fetch(ctx context.Context, host string) (*geodb.Location, error)
	Add(ctx context.Context, host string, loc *geodb.Location) error
}
