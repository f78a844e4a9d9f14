package cache

import (
	"context"
	"errors"

	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

// Tier is a set of cache layers.
type Tier uint8

const (
	TierMemory Tier = 1 << iota
	TierDisk

	// TierAll addresses every tier at once.
	TierAll = TierMemory | TierDisk
)

func (t Tier) Has(tier Tier) bool {
	return t&tier != 0
}

func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierDisk:
		return "disk"
	case TierAll:
		return "all"
	default:
		return "none"
	}
}

// resolveTiers returns memory tier when no tier was requested explicitly.
func resolveTiers(tiers []Tier) Tier {
	resolved := Tier(0)
	for _, tier := range tiers {
		resolved |= tier
	}

	if resolved == 0 {
		return TierMemory
	}

	return resolved
}

type MemoryStore interface {
	Get(key cachekey.MemoryKey) (decoder.ImageContainer, bool)
	Set(key cachekey.MemoryKey, container decoder.ImageContainer)
	Remove(key cachekey.MemoryKey)
	RemoveAll()
}

// DiskStore keeps encoded bytes. Data returns ErrEntryNotFound on a miss.
type DiskStore interface {
	Data(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
	RemoveAll(ctx context.Context) error
	Flush(ctx context.Context) error
}

// CacheService gives unified access to the cache tiers. Lookups and
// removals without explicit tiers address the memory tier only. Store
// failures are logged and treated as misses.
type CacheService interface {
	CachedImage(ctx context.Context, r request.Request, tiers ...Tier) (decoder.ImageContainer, bool)
	StoreCachedImage(ctx context.Context, container decoder.ImageContainer, r request.Request, tiers ...Tier)
	RemoveCachedImage(ctx context.Context, r request.Request, tiers ...Tier)

	CachedData(ctx context.Context, r request.Request) ([]byte, bool)
	StoreCachedData(ctx context.Context, data []byte, r request.Request)
	RemoveCachedData(ctx context.Context, r request.Request)

	RemoveAll(ctx context.Context)
	Flush(ctx context.Context) error

	MakeMemoryKey(r request.Request) cachekey.MemoryKey
	MakeDiskKey(r request.Request) string

	Memory() MemoryStore
	Disk() DiskStore
}

var (
	ErrEntryNotFound = errors.New("entry not found")
)
