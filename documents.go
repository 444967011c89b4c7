package main

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// CachedDocument is a document body together with the time it was read from disk.
type CachedDocument struct {
	Data     []byte
	StoredAt time.Time
}

// DocumentStore reads static documents from disk and optionally keeps them in memory for a fixed time-to-live.
// With a zero TTL every Load reads the file again, so edits show up on the next request.
type DocumentStore struct {
	entries  map[string]CachedDocument
	mu       sync.RWMutex
	ttl      time.Duration
	readFile func(name string) ([]byte, error)
}

// NewDocumentStore creates a store whose cached entries expire after ttl.
func NewDocumentStore(ttl time.Duration) *DocumentStore {
	return &DocumentStore{
		entries:  make(map[string]CachedDocument),
		ttl:      ttl,
		readFile: os.ReadFile,
	}
}

// Load returns the content of the document at path.
func (s *DocumentStore) Load(path string) ([]byte, error) {
	if data, ok := s.get(path); ok {
		return data, nil
	}

	data, err := s.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read document %s: %w", path, err)
	}

	s.set(path, data)

	return data, nil
}

func (s *DocumentStore) get(path string) ([]byte, bool) {
	if s.ttl <= 0 {
		return nil, false
	}

	s.mu.RLock()
	entry, ok := s.entries[path]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Since(entry.StoredAt) > s.ttl {
		// expired; remove lazily
		s.mu.Lock()
		delete(s.entries, path)
		s.mu.Unlock()

		return nil, false
	}

	return entry.Data, true
}

func (s *DocumentStore) set(path string, data []byte) {
	if s.ttl <= 0 {
		return
	}

	s.mu.Lock()
	s.entries[path] = CachedDocument{Data: data, StoredAt: time.Now()}
	s.mu.Unlock()
}
