package memory

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
)

type entry struct {
	container decoder.ImageContainer
	cost      int64
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type shard struct {
	lock       sync.RWMutex
	lru        *simplelru.LRU[cachekey.MemoryKey, *entry]
	cost       int64
	costLimit  int64
	countLimit int
}

func newShard(costLimit int64, countLimit int) *shard {
	s := &shard{
		costLimit:  costLimit,
		countLimit: countLimit,
	}

	// the error is returned only for non positive sizes
	s.lru, _ = simplelru.NewLRU[cachekey.MemoryKey, *entry](countLimit, s.onEvict)
	return s
}

// onEvict is called by the lru with the lock held.
func (s *shard) onEvict(key cachekey.MemoryKey, e *entry) {
	s.cost -= e.cost
}

func (s *shard) get(key cachekey.MemoryKey, now time.Time) (decoder.ImageContainer, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.lru.Get(key)
	if !ok {
		return decoder.ImageContainer{}, false
	}

	if e.expired(now) {
		s.lru.Remove(key)
		return decoder.ImageContainer{}, false
	}

	return e.container, true
}

func (s *shard) set(key cachekey.MemoryKey, e *entry) {
	s.lock.Lock()
	defer s.lock.Unlock()

	// Add replaces existing values without calling onEvict
	if previous, ok := s.lru.Peek(key); ok {
		s.cost -= previous.cost
	}

	s.lru.Add(key, e)
	s.cost += e.cost

	s.trimLocked(s.costLimit, s.countLimit)
}

func (s *shard) remove(key cachekey.MemoryKey) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lru.Remove(key)
}

func (s *shard) removeIdentity(identity string) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	removed := 0
	for _, key := range s.lru.Keys() {
		if key.Identity == identity {
			s.lru.Remove(key)
			removed++
		}
	}

	return removed
}

func (s *shard) removeAll() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lru.Purge()
	s.cost = 0
}

func (s *shard) trim(costLimit int64, countLimit int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.trimLocked(costLimit, countLimit)
}

func (s *shard) trimLocked(costLimit int64, countLimit int) {
	for s.lru.Len() > 0 && (s.cost > costLimit || s.lru.Len() > countLimit) {
		s.lru.RemoveOldest()
	}
}

func (s *shard) totalCost() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.cost
}

func (s *shard) len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.lru.Len()
}
