package service

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	infraPrometheus "github.com/sifan077/blt/internal/infra/prometheus"
)

const (
	defaultSightingCapacity = 1_000_000
	defaultSightingFPRate   = 0.01
)

// FingerprintSightings estimates whether this process has seen a fingerprint
// before. False positives are possible; false negatives are not.
type FingerprintSightings struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewFingerprintSightings sizes the filter for the expected number of distinct
// fingerprints and false positive rate. Zero values pick the defaults.
func NewFingerprintSightings(capacity uint, fpRate float64) *FingerprintSightings {
	if capacity == 0 {
		capacity = defaultSightingCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = defaultSightingFPRate
	}
	return &FingerprintSightings{filter: bloom.NewWithEstimates(capacity, fpRate)}
}

// Observe records the fingerprint and reports whether it is probably new.
func (s *FingerprintSightings) Observe(fingerprint string) bool {
	s.mu.Lock()
	seen := s.filter.TestOrAddString(fingerprint)
	s.mu.Unlock()

	if seen {
		infraPrometheus.FingerprintSightings.WithLabelValues("returning").Inc()
		return false
	}
	infraPrometheus.FingerprintSightings.WithLabelValues("first_seen").Inc()
	return true
}
