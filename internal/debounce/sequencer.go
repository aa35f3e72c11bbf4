// Package debounce coalesces bursts of keyed requests so that only the most
// recently issued one is executed and applied.
package debounce

import "sync"

// Sequencer hands out monotonically increasing tokens per key. A result is
// applied only if its token is still the latest issued for that key. Tokens
// are unique across keys, so a forgotten key never reissues an old token.
type Sequencer struct {
	mu   sync.Mutex
	next uint64
	last map[string]uint64
}

// NewSequencer constructs an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[string]uint64)}
}

// Next issues a new token for key.
func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.last[key] = s.next
	return s.next
}

// Forget drops key if token is still its latest, so idle keys do not
// accumulate.
func (s *Sequencer) Forget(key string, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != 0 && s.last[key] == token {
		delete(s.last, key)
	}
}

// Len returns the number of keys with a live token.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}

// Current returns the latest token issued for key, or zero.
func (s *Sequencer) Current(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[key]
}

// IsLatest reports whether token is the most recent one issued for key.
func (s *Sequencer) IsLatest(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token != 0 && s.last[key] == token
}
