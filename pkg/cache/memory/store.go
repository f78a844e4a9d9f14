package memory

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/pressure"
)

type Config struct {
	// CostLimit is the total cost of all entries, see decoder.ImageContainer.Cost.
	// Zero means unlimited.
	CostLimit int64

	// CountLimit is the maximum number of entries, zero means unlimited.
	CountLimit int

	// EntryCostLimit is a fraction of CostLimit, entries more expensive
	// than that are never stored.
	EntryCostLimit float64

	// TTL limits how long an entry stays valid, zero means forever.
	TTL time.Duration

	// Shards splits the store into independently locked parts. Limits
	// are divided evenly between shards.
	Shards int

	Logger *logrus.Entry
}

func DefaultConfig() Config {
	return Config{
		CostLimit:      256 * 1024 * 1024,
		EntryCostLimit: 0.1,
		Shards:         16,
	}
}

// Store is a cost bounded LRU store of decoded images.
type Store struct {
	config Config
	shards []*shard
	log    *logrus.Entry
	now    func() time.Time

	unsubscribe func()
}

var _ cache.MemoryStore = (*Store)(nil)

func NewStore(config Config) *Store {
	if config.Shards < 1 {
		config.Shards = 1
	}

	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	store := &Store{
		config: config,
		shards: make([]*shard, config.Shards),
		log:    log.WithField("tier", cache.TierMemory.String()),
		now:    time.Now,
	}

	costLimit := int64(math.MaxInt64)
	if config.CostLimit > 0 {
		costLimit = divideLimit(config.CostLimit, config.Shards)
	}

	countLimit := math.MaxInt32
	if config.CountLimit > 0 {
		countLimit = int(divideLimit(int64(config.CountLimit), config.Shards))
	}

	for i := range store.shards {
		store.shards[i] = newShard(costLimit, countLimit)
	}

	return store
}

func (s *Store) Get(key cachekey.MemoryKey) (decoder.ImageContainer, bool) {
	return s.shardFor(key).get(key, s.now())
}

func (s *Store) Set(key cachekey.MemoryKey, container decoder.ImageContainer) {
	cost := container.Cost()
	if s.config.CostLimit > 0 && s.config.EntryCostLimit > 0 && float64(cost) > float64(s.config.CostLimit)*s.config.EntryCostLimit {
		s.log.WithField("key", key.String()).Debug("entry too expensive to cache")
		return
	}

	expiresAt := time.Time{}
	if s.config.TTL > 0 {
		expiresAt = s.now().Add(s.config.TTL)
	}

	s.shardFor(key).set(key, &entry{container, cost, expiresAt})
}

func (s *Store) Remove(key cachekey.MemoryKey) {
	s.shardFor(key).remove(key)
}

// RemoveIdentity removes every entry of the source image, whatever
// processors it was rendered with.
func (s *Store) RemoveIdentity(identity string) int {
	removed := 0
	for _, shard := range s.shards {
		removed += shard.removeIdentity(identity)
	}

	return removed
}

func (s *Store) RemoveAll() {
	for _, shard := range s.shards {
		shard.removeAll()
	}
}

// TrimToCost evicts least recently used entries until the total
// cost does not exceed limit.
func (s *Store) TrimToCost(limit int64) {
	perShard := divideLimit(limit, len(s.shards))
	for _, shard := range s.shards {
		shard.trim(perShard, math.MaxInt32)
	}
}

func (s *Store) TrimToCount(limit int) {
	perShard := int(divideLimit(int64(limit), len(s.shards)))
	for _, shard := range s.shards {
		shard.trim(math.MaxInt64, perShard)
	}
}

func (s *Store) TotalCost() int64 {
	total := int64(0)
	for _, shard := range s.shards {
		total += shard.totalCost()
	}

	return total
}

func (s *Store) Len() int {
	total := 0
	for _, shard := range s.shards {
		total += shard.len()
	}

	return total
}

// ListenTo trims the store whenever the signal reports memory pressure.
// Warning halves the store, critical empties it.
func (s *Store) ListenTo(signal pressure.Signal) {
	s.StopListening()

	s.unsubscribe = signal.Subscribe(func(level pressure.Level) {
		s.log.WithField("level", level.String()).Info("trimming memory cache")

		if level == pressure.LevelCritical {
			s.RemoveAll()
			return
		}

		s.TrimToCost(s.TotalCost() / 2)
	})
}

func (s *Store) StopListening() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Store) shardFor(key cachekey.MemoryKey) *shard {
	if len(s.shards) == 1 {
		return s.shards[0]
	}

	return s.shards[cachekey.Hash(key.String())%uint64(len(s.shards))]
}

func divideLimit(limit int64, parts int) int64 {
	if limit <= 0 {
		return 0
	}

	perPart := limit / int64(parts)
	if perPart < 1 {
		perPart = 1
	}

	return perPart
}
