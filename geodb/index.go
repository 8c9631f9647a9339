package geodb

import "sort"

// Record is one row of the range dataset. Latitude and Longitude keep the
// dataset's original text so coordinates round-trip into the output without
// float reformatting.
type Record struct {
	Start     uint32
	End       uint32
	Latitude  string
	Longitude string
}

// Location is the payload returned by a successful lookup.
type Location struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Index is an immutable table of [Start,End] ranges. It is never mutated
// after NewIndex, so any number of goroutines may query it without locking.
type Index struct {
	records []Record
}

// NewIndex builds an Index from records that are already sorted ascending by
// Start and mutually disjoint. The input is neither re-sorted nor validated;
// the dataset guarantees both properties.
func NewIndex(records []Record) *Index {
	return &Index{records: records}
}

// Len reports the number of ranges in the table.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Lookup finds the range containing ip, if any. It floor-searches the Start
// column and checks containment against that single candidate only: an ip in
// the gap between two ranges is a miss, not a near match. Both range
// boundaries are inclusive.
func (ix *Index) Lookup(ip uint32) (Location, bool) {
	i := sort.Search(len(ix.records), func(i int) bool {
		return ix.records[i].Start > ip
	})
	if i == 0 {
		return Location{}, false
	}

	rec := ix.records[i-1]
	if ip > rec.End {
		return Location{}, false
	}

	return Location{Latitude: rec.Latitude, Longitude: rec.Longitude}, true
}
