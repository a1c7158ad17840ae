// Package bloom provides probabilistic set membership for the scraper's
// URL and content deduplication.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Default sizing for a documentation site scrape.
const (
	DefaultExpectedItems     = 10000
	DefaultFalsePositiveRate = 0.001
)

// Filter is a Bloom filter over string keys. It is not safe for concurrent
// use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a key to the filter.
func (f *Filter) Add(key string) {
	f.f.AddString(key)
}

// Test returns true if the key might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(key string) bool {
	return f.f.TestString(key)
}

// Seen reports whether key was possibly added before and adds it.
func (f *Filter) Seen(key string) bool {
	return f.f.TestAndAddString(key)
}

// EstimatedCount returns the approximate number of keys in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Set is an exact string set fronted by a Bloom filter. The filter answers
// most misses; its hits are confirmed against the stored keys, so Seen
// never reports a false positive.
type Set struct {
	filter *Filter
	keys   map[string]struct{}
}

// NewSet creates a Set sized for n expected keys.
func NewSet(n uint) *Set {
	return &Set{
		filter: NewFilter(max(n, 1), DefaultFalsePositiveRate),
		keys:   make(map[string]struct{}, n),
	}
}

// Seen reports whether key was added before and adds it.
func (s *Set) Seen(key string) bool {
	if s.filter.Seen(key) {
		if _, ok := s.keys[key]; ok {
			return true
		}
	}
	s.keys[key] = struct{}{}
	return false
}

// Len returns the number of distinct keys added.
func (s *Set) Len() int {
	return len(s.keys)
}
