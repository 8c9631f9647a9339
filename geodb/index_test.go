package geodb

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLookupEmpty(t *testing.T) {
	index := NewIndex(nil)

	_, ok := index.Lookup(0)
	assert.False(t, ok)
}

func TestIndexLookupBoundaries(t *testing.T) {
	index := NewIndex([]Record{
		{Start: 10, End: 20, Latitude: "1", Longitude: "2"},
	})

	for _, ip := range []uint32{10, 15, 20} {
		loc, ok := index.Lookup(ip)
		require.True(t, ok, "ip %d", ip)
		assert.Equal(t, "1", loc.Latitude)
		assert.Equal(t, "2", loc.Longitude)
	}

	for _, ip := range []uint32{0, 9, 21, 4294967295} {
		_, ok := index.Lookup(ip)
		assert.False(t, ok, "ip %d", ip)
	}
}

func TestIndexLookupGapBetweenRanges(t *testing.T) {
	index := NewIndex([]Record{
		{Start: 10, End: 20, Latitude: "1", Longitude: "1"},
		{Start: 30, End: 40, Latitude: "2", Longitude: "2"},
	})

	// the gap must be a miss, not a near match on either side
	for _, ip := range []uint32{21, 25, 29} {
		_, ok := index.Lookup(ip)
		assert.False(t, ok, "ip %d", ip)
	}

	loc, ok := index.Lookup(30)
	require.True(t, ok)
	assert.Equal(t, "2", loc.Latitude)

	loc, ok = index.Lookup(20)
	require.True(t, ok)
	assert.Equal(t, "1", loc.Latitude)
}

func TestIndexLookupTokyoRange(t *testing.T) {
	// the 1.0.0.0/24 range from the dataset's first rows
	index := NewIndex([]Record{
		{Start: 16777216, End: 16777471, Latitude: "35.6895", Longitude: "139.6917"},
	})

	ip, err := ParseIPv4("1.0.0.5")
	require.NoError(t, err)

	loc, ok := index.Lookup(ip)
	require.True(t, ok)
	assert.Equal(t, "35.6895", loc.Latitude)
	assert.Equal(t, "139.6917", loc.Longitude)

	ip, err = ParseIPv4("1.0.1.0")
	require.NoError(t, err)

	_, ok = index.Lookup(ip)
	assert.False(t, ok)
}

func TestIndexLookupRandomDisjointRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		records := randomDisjointRecords(rng, 200)
		index := NewIndex(records)

		for probe := 0; probe < 2000; probe++ {
			ip := rng.Uint32()

			loc, ok := index.Lookup(ip)
			wantLoc, wantOk := bruteForceLookup(records, ip)

			require.Equal(t, wantOk, ok, "ip %d", ip)
			if wantOk {
				assert.Equal(t, wantLoc, loc, "ip %d", ip)
			}
		}

		// probe the edges of every range too
		for _, rec := range records {
			_, ok := index.Lookup(rec.Start)
			assert.True(t, ok)
			_, ok = index.Lookup(rec.End)
			assert.True(t, ok)
		}
	}
}

func randomDisjointRecords(rng *rand.Rand, n int) []Record {
	records := make([]Record, 0, n)

	next := uint32(0)
	for i := 0; i < n; i++ {
		start := next + uint32(rng.Intn(1<<20)) + 1
		end := start + uint32(rng.Intn(1<<16))
		records = append(records, Record{
			Start:     start,
			End:       end,
			Latitude:  FormatIPv4(start),
			Longitude: FormatIPv4(end),
		})
		next = end + 1
	}

	return records
}

func bruteForceLookup(records []Record, ip uint32) (Location, bool) {
	for _, rec := range records {
		if rec.Start <= ip && ip <= rec.End {
			return Location{Latitude: rec.Latitude, Longitude: rec.Longitude}, true
		}
	}

	return Location{}, false
}
