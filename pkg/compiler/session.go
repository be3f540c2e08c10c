package compiler

import "sync"

// Session serializes concurrent pipeline runs against one graph
// document. Each run takes a sequence number from Begin; when it
// finishes, Latest tells it whether its result is still current.
// Stale results are dropped whole, never merged with newer ones.
type Session struct {
	mu  sync.Mutex
	seq uint64
}

// Begin registers a new run and returns its sequence number. Any run
// with a lower number is superseded from this point on.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Latest reports whether the run with the given sequence number is
// still the newest one, meaning its result may be applied.
func (s *Session) Latest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}
