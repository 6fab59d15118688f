package crawl

import "sync"

// signatureSet is a concurrent string set with atomic check-and-insert.
// One instance guards page price signatures, another PDF content
// fingerprints; each has its own lock so the two tables never contend
// with each other.
type signatureSet struct {
	mu sync.Mutex
	m  map[string]struct{}
}

func newSignatureSet() *signatureSet {
	return &signatureSet{m: make(map[string]struct{})}
}

// Add inserts sig and reports whether it was absent. Check and insert
// happen as one step, so concurrent duplicates collapse to a single
// winner.
func (s *signatureSet) Add(sig string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[sig]; ok {
		return false
	}
	s.m[sig] = struct{}{}
	return true
}

// Len reports how many signatures have been recorded.
func (s *signatureSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
