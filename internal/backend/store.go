package backend

import (
	"sync"

	"stockboard/domain/core"
	"stockboard/domain/dataset"
)

// Store keeps uploaded frames in memory, keyed by their token.
type Store struct {
	mu     sync.RWMutex
	frames map[core.Token]*dataset.Frame
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{frames: make(map[core.Token]*dataset.Frame)}
}

// Put stores a frame under a fresh token.
func (s *Store) Put(f *dataset.Frame) core.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := core.NewToken()
	for {
		if _, taken := s.frames[token]; !taken {
			break
		}
		token = core.NewToken()
	}
	s.frames[token] = f
	return token
}

// Get returns the frame for token.
func (s *Store) Get(token core.Token) (*dataset.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.frames[token]
	return f, ok
}

// Len returns the number of stored frames.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}
