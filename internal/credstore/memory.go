package credstore

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu         sync.RWMutex
	credential []byte
	username   string
	present    bool
}

// NewMemoryStore builds an in-memory store for testing.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Get(_ context.Context) ([]byte, string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return nil, "", false, nil
	}
	credential := make([]byte, len(s.credential))
	copy(credential, s.credential)
	return credential, s.username, true, nil
}

func (s *memoryStore) Put(_ context.Context, credential []byte, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = make([]byte, len(credential))
	copy(s.credential, credential)
	s.username = username
	s.present = true
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = nil
	s.username = ""
	s.present = false
	return nil
}
