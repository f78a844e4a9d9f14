package mock_cache

import (
	"context"
	"sync"

	"github.com/thebartekbanach/imgpipe/pkg/cache"
)

// TestingDiskStore is an in-memory DiskStore recording its traffic.
type TestingDiskStore struct {
	lock    sync.Mutex
	entries map[string][]byte

	Reads   int
	Writes  int
	Flushes int
}

var _ cache.DiskStore = (*TestingDiskStore)(nil)

func NewTestingDiskStore() *TestingDiskStore {
	return &TestingDiskStore{entries: make(map[string][]byte)}
}

func (s *TestingDiskStore) Data(ctx context.Context, key string) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.Reads++
	data, exists := s.entries[key]
	if !exists {
		return nil, cache.ErrEntryNotFound
	}

	return data, nil
}

func (s *TestingDiskStore) Store(ctx context.Context, key string, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.Writes++
	s.entries[key] = data
	return nil
}

func (s *TestingDiskStore) Remove(ctx context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.entries[key]; !exists {
		return cache.ErrEntryNotFound
	}

	delete(s.entries, key)
	return nil
}

func (s *TestingDiskStore) RemoveAll(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries = make(map[string][]byte)
	return nil
}

func (s *TestingDiskStore) Flush(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.Flushes++
	return nil
}

func (s *TestingDiskStore) Has(key string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, exists := s.entries[key]
	return exists
}

func (s *TestingDiskStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.entries)
}

func (s *TestingDiskStore) Stats() (reads, writes int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.Reads, s.Writes
}
