package cache

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymaps/relaygeo/geodb"
)

func TestLocalCache(t *testing.T) {
	viper.Set("cache.size", 8)
	defer viper.Reset()

	ctx := context.Background()

	lc, err := NewLocalCache(ctx)
	require.NoError(t, err)

	loc, err := lc.Fetch(ctx, "relay.example.com")
	require.NoError(t, err)
	assert.Nil(t, loc)

	want := &geodb.Location{Latitude: "35.6895", Longitude: "139.6917"}
	require.NoError(t, lc.Add(ctx, "relay.example.com", want))

	loc, err = lc.Fetch(ctx, "relay.example.com")
	require.NoError(t, err)
	assert.Equal(t, want, loc)

	loc, err = lc.Fetch(ctx, "other.example.com")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestLocalCacheInvalidSize(t *testing.T) {
	viper.Set("cache.size", 0)
	defer viper.Reset()

	_, err := NewLocalCache(context.Background())
	assert.Error(t, err)
}
