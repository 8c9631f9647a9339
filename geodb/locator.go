package geodb

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Locator answers "where is this IPv4 address" queries. A nil Location with
// a nil error means the address is simply not covered.
type Locator interface {
	Lookup(ctx context.Context, address string) (*Location, error)
}

// IndexLocator adapts the interval Index to the Locator interface.
type IndexLocator struct {
	index *Index
}

func NewIndexLocator(index *Index) *IndexLocator {
	return &IndexLocator{index: index}
}

func (il *IndexLocator) Lookup(_ context.Context, address string) (*Location, error) {
	ip, err := ParseIPv4(address)
	if err != nil {
		return nil, err
	}

	loc, ok := il.index.Lookup(ip)
	if !ok {
		return nil, nil
	}

	return &loc, nil
}

// CascadeLocator tries locators in order and returns the first answer. A
// failing locator is logged and skipped, so fallbacks still get their turn.
type CascadeLocator struct {
	locators []Locator
}

func NewCascadeLocator(locators ...Locator) *CascadeLocator {
	return &CascadeLocator{locators: locators}
}

func (cl *CascadeLocator) Lookup(ctx context.Context, address string) (*Location, error) {
	for _, locator := range cl.locators {
		loc, err := locator.Lookup(ctx, address)
		if err != nil {
			log.Debug().Err(err).Str("address", address).Msg("locator failed, moving on to the next one")
			continue
		}

		if loc != nil {
			return loc, nil
		}
	}

	// not found anywhere
	return nil, nil
}
