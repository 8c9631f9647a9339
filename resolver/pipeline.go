package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/relaymaps/relaygeo/cache"
	"github.com/relaymaps/relaygeo/geodb"
)

// Outcome is the result for one endpoint: the original URL together with the
// coordinates it resolved to. A nil Outcome marks an endpoint that could not
// be resolved or located; the two cases are deliberately not distinguished.
type Outcome struct {
	URL       string `json:"url"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Pipeline drives many independent resolve-then-locate lookups against a
// shared read-only locator.
type Pipeline struct {
	resolver Resolver
	locator  geodb.Locator
	cache    cache.Provider
	timeout  time.Duration
	workers  int
}

func NewPipeline(resolver Resolver, locator geodb.Locator, cp cache.Provider, timeout time.Duration, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}

	return &Pipeline{
		resolver: resolver,
		locator:  locator,
		cache:    cp,
		timeout:  timeout,
		workers:  workers,
	}
}

// ResolveAndLocate turns one relay endpoint into an Outcome. Every failure
// mode collapses to nil: empty hostname, resolution errors, addresses not
// covered by the dataset.
func (p *Pipeline) ResolveAndLocate(ctx context.Context, rawURL string) *Outcome {
	host := CleanURL(rawURL)
	if host == "" {
		return nil
	}

	loc := p.locate(ctx, host)
	if loc == nil {
		return nil
	}

	return &Outcome{
		URL:       rawURL,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
}

func (p *Pipeline) locate(ctx context.Context, host string) *geodb.Location {
	if p.cache != nil {
		if loc, err := p.cache.Fetch(ctx, host); err == nil && loc != nil {
			return loc
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	addrs, err := p.resolver.LookupIPv4(ctx, host)
	if err != nil || len(addrs) == 0 {
		log.Debug().Err(err).Str("host", host).Msg("resolution failed")
		return nil
	}

	// first address wins
	loc, err := p.locator.Lookup(ctx, addrs[0])
	if err != nil || loc == nil {
		log.Debug().Err(err).Str("host", host).Str("address", addrs[0]).Msg("no location for address")
		return nil
	}

	if p.cache != nil {
		if err := p.cache.Add(ctx, host, loc); err != nil {
			log.Error().Err(err).Msg("failed to update cache")
		}
	}

	return loc
}

type locateRequest struct {
	ctx  context.Context
	url  string
	slot int
}

// Run resolves every endpoint concurrently on a bounded worker pool. The
// returned slice is positionally aligned with urls whatever order the
// resolutions finished in, and a failed endpoint leaves a nil slot without
// affecting its neighbours.
func (p *Pipeline) Run(ctx context.Context, urls []string) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(urls))
	wg := &sync.WaitGroup{}

	pool, err := ants.NewPoolWithFunc(p.workers, func(arg interface{}) {
		defer wg.Done()

		req := arg.(*locateRequest)
		outcomes[req.slot] = p.ResolveAndLocate(req.ctx, req.url)
	})
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	for i, url := range urls {
		wg.Add(1)

		if err := pool.Invoke(&locateRequest{ctx: ctx, url: url, slot: i}); err != nil {
			wg.Done()
			return nil, err
		}
	}

	wg.Wait()

	return outcomes, nil
}
