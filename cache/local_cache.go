package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/spf13/viper"

	"github.com/relaymaps/relaygeo/geodb"
)

type LocalCache struct {
	cache *lru.ARCCache
}

func NewLocalCache(ctx context.Context) (*LocalCache, error) {
	cache, err := lru.NewARC(viper.GetInt("cache.size"))
	if err != nil {
		return nil, err
	}

	return &LocalCache{
		cache: cache,
	}, nil
}

func (lc *LocalCache) Fetch(ctx context.Context, host string) (*geodb.Location, error) {
	value, ok := lc.cache.Get(host)
	if ok {
		return value.(*geodb.Location), nil
	}

	return nil, nil
}

func (lc *LocalCache) Add(ctx context.Context, host string, loc *geodb.Location) error {
	lc.cache.Add(host, loc)

	return nil
}
