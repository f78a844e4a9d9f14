package memory

import (
	"context"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/pressure"
)

// containerOfCost returns a container whose Cost equals 4*pixels.
func containerOfCost(pixels int) decoder.ImageContainer {
	return decoder.ImageContainer{Image: image.NewNRGBA(image.Rect(0, 0, pixels, 1)), Format: "png"}
}

func key(name string) cachekey.MemoryKey {
	return cachekey.MemoryKey{Identity: name}
}

func singleShard(config Config) Config {
	config.Shards = 1
	return config
}

func TestStore_SetGetRemove(t *testing.T) {
	store := NewStore(DefaultConfig())
	container := containerOfCost(10)

	store.Set(key("a"), container)

	got, ok := store.Get(key("a"))
	require.True(t, ok)
	assert.Equal(t, container, got)
	assert.Equal(t, int64(40), store.TotalCost())

	store.Remove(key("a"))
	_, ok = store.Get(key("a"))
	assert.False(t, ok)
	assert.Equal(t, int64(0), store.TotalCost())
}

func TestStore_ReplacingEntryUpdatesCost(t *testing.T) {
	store := NewStore(singleShard(Config{CostLimit: 1000}))

	store.Set(key("a"), containerOfCost(10))
	store.Set(key("a"), containerOfCost(20))

	assert.Equal(t, int64(80), store.TotalCost())
	assert.Equal(t, 1, store.Len())
}

func TestStore_EvictsLeastRecentlyUsedOverCostLimit(t *testing.T) {
	store := NewStore(singleShard(Config{CostLimit: 120}))

	store.Set(key("a"), containerOfCost(10))
	store.Set(key("b"), containerOfCost(10))
	store.Set(key("c"), containerOfCost(10))

	// touch a so that b becomes the oldest
	_, ok := store.Get(key("a"))
	require.True(t, ok)

	store.Set(key("d"), containerOfCost(10))

	_, ok = store.Get(key("b"))
	assert.False(t, ok)
	for _, name := range []string{"a", "c", "d"} {
		_, ok := store.Get(key(name))
		assert.True(t, ok, name)
	}
	assert.Equal(t, int64(120), store.TotalCost())
}

func TestStore_EvictsOverCountLimit(t *testing.T) {
	store := NewStore(singleShard(Config{CountLimit: 2}))

	store.Set(key("a"), containerOfCost(1))
	store.Set(key("b"), containerOfCost(1))
	store.Set(key("c"), containerOfCost(1))

	assert.Equal(t, 2, store.Len())
	_, ok := store.Get(key("a"))
	assert.False(t, ok)
}

func TestStore_SkipsEntriesAboveEntryCostLimit(t *testing.T) {
	store := NewStore(singleShard(Config{CostLimit: 400, EntryCostLimit: 0.1}))

	store.Set(key("small"), containerOfCost(10))
	store.Set(key("big"), containerOfCost(11))

	_, ok := store.Get(key("small"))
	assert.True(t, ok)
	_, ok = store.Get(key("big"))
	assert.False(t, ok)
}

func TestStore_ExpiresEntriesAfterTTL(t *testing.T) {
	store := NewStore(Config{TTL: time.Minute})
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Set(key("a"), containerOfCost(1))
	_, ok := store.Get(key("a"))
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get(key("a"))
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_TrimToCostAndCount(t *testing.T) {
	store := NewStore(singleShard(Config{}))
	for i := 0; i < 10; i++ {
		store.Set(key(fmt.Sprint(i)), containerOfCost(1))
	}

	store.TrimToCost(20)
	assert.Equal(t, int64(20), store.TotalCost())
	assert.Equal(t, 5, store.Len())

	// the newest entries survive
	_, ok := store.Get(key("9"))
	assert.True(t, ok)

	store.TrimToCount(2)
	assert.Equal(t, 2, store.Len())

	store.TrimToCost(0)
	assert.Equal(t, 0, store.Len())
}

func TestStore_RemoveIdentityRemovesEveryRendition(t *testing.T) {
	store := NewStore(DefaultConfig())

	store.Set(cachekey.MemoryKey{Identity: "a"}, containerOfCost(1))
	store.Set(cachekey.MemoryKey{Identity: "a", Processors: "grayscale"}, containerOfCost(1))
	store.Set(cachekey.MemoryKey{Identity: "a", MaxPixelSize: 64}, containerOfCost(1))
	store.Set(cachekey.MemoryKey{Identity: "b"}, containerOfCost(1))

	assert.Equal(t, 3, store.RemoveIdentity("a"))
	assert.Equal(t, 1, store.Len())

	_, ok := store.Get(cachekey.MemoryKey{Identity: "b"})
	assert.True(t, ok)
}

func TestStore_RemoveAllEmptiesEveryShard(t *testing.T) {
	store := NewStore(DefaultConfig())
	for i := 0; i < 100; i++ {
		store.Set(key(fmt.Sprint(i)), containerOfCost(1))
	}

	store.RemoveAll()

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(0), store.TotalCost())
}

func TestStore_ReactsToMemoryPressure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster := pressure.NewBroadcaster()
	go broadcaster.StartMonitor(ctx)

	store := NewStore(singleShard(Config{}))
	store.ListenTo(broadcaster)
	defer store.StopListening()

	for i := 0; i < 8; i++ {
		store.Set(key(fmt.Sprint(i)), containerOfCost(1))
	}

	require.NoError(t, <-broadcaster.Notify(pressure.LevelWarning))
	assert.Equal(t, 4, store.Len())

	require.NoError(t, <-broadcaster.Notify(pressure.LevelCritical))
	assert.Equal(t, 0, store.Len())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(Config{CostLimit: 4 * 50, Shards: 4})

	wg := sync.WaitGroup{}
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			for i := 0; i < 500; i++ {
				k := key(fmt.Sprint(i % 37))
				switch (worker + i) % 5 {
				case 0:
					store.Remove(k)
				case 1:
					store.TrimToCost(100)
				default:
					store.Set(k, containerOfCost(1))
					store.Get(k)
				}
			}
		}(worker)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.TotalCost(), int64(4*50))
	assert.Equal(t, int64(store.Len()*4), store.TotalCost())
}
