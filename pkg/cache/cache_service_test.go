package cache_test

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"github.com/thebartekbanach/imgpipe/pkg/cache/memory"
	mock_cache "github.com/thebartekbanach/imgpipe/pkg/cache/mocks"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/processor"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

func newTestContainer() decoder.ImageContainer {
	return decoder.ImageContainer{Image: image.NewNRGBA(image.Rect(0, 0, 4, 4)), Format: "png"}
}

func newTestCacheService() (cache.CacheService, *memory.Store, *mock_cache.TestingDiskStore) {
	memoryStore := memory.NewStore(memory.DefaultConfig())
	diskStore := mock_cache.NewTestingDiskStore()

	service := cache.NewCacheService(cache.Config{
		Memory: memoryStore,
		Disk:   diskStore,
		Codec:  decoder.NewImagingCodec(decoder.DefaultImagingCodecConfig()),
	})

	return service, memoryStore, diskStore
}

func TestCacheService_StoreInMemoryIsNotVisibleInDisk(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestCacheService()
	r := request.New("http://host/image.png")

	service.StoreCachedImage(ctx, newTestContainer(), r, cache.TierMemory)

	if _, ok := service.CachedImage(ctx, r, cache.TierDisk); ok {
		t.Errorf("Expected disk tier to be empty")
	}

	if _, ok := service.CachedImage(ctx, r, cache.TierMemory); !ok {
		t.Errorf("Expected image in memory tier")
	}

	if _, ok := service.CachedImage(ctx, r); !ok {
		t.Errorf("Expected default lookup to read memory tier")
	}
}

func TestCacheService_DefaultTiersAreMemoryOnly(t *testing.T) {
	ctx := context.Background()
	service, _, diskStore := newTestCacheService()
	r := request.New("http://host/image.png")

	service.StoreCachedImage(ctx, newTestContainer(), r)
	if diskStore.Len() != 0 {
		t.Errorf("Expected default store to skip disk tier")
	}

	service.StoreCachedImage(ctx, newTestContainer(), r, cache.TierDisk)
	service.RemoveCachedImage(ctx, r)

	if _, ok := service.CachedImage(ctx, r); ok {
		t.Errorf("Expected default removal to clear memory tier")
	}

	if _, ok := service.CachedImage(ctx, r, cache.TierDisk); !ok {
		t.Errorf("Expected default removal to keep disk tier")
	}
}

func TestCacheService_ReadsDiskWhenRequestedExplicitly(t *testing.T) {
	ctx := context.Background()
	service, _, diskStore := newTestCacheService()
	r := request.New("http://host/image.png", processor.Grayscale{})

	service.StoreCachedImage(ctx, newTestContainer(), r, cache.TierDisk)

	if !diskStore.Has(service.MakeDiskKey(r)) {
		t.Fatalf("Expected encoded image stored under disk key")
	}

	if _, ok := service.CachedImage(ctx, r); ok {
		t.Errorf("Expected default lookup to skip disk tier")
	}

	container, ok := service.CachedImage(ctx, r, cache.TierAll)
	if !ok {
		t.Fatalf("Expected image from disk tier")
	}

	if container.Image.Bounds().Dx() != 4 || container.Format != "png" {
		t.Errorf("Expected decoded 4px png, got %v %s", container.Image.Bounds(), container.Format)
	}
}

func TestCacheService_RemoveAllClearsEveryTier(t *testing.T) {
	ctx := context.Background()
	service, memoryStore, diskStore := newTestCacheService()
	r := request.New("http://host/image.png")

	service.StoreCachedImage(ctx, newTestContainer(), r, cache.TierAll)
	service.StoreCachedData(ctx, []byte("raw"), request.New("http://host/other.png"))

	service.RemoveAll(ctx)

	for _, tiers := range []cache.Tier{cache.TierMemory, cache.TierDisk, cache.TierAll} {
		if _, ok := service.CachedImage(ctx, r, tiers); ok {
			t.Errorf("Expected %s tier to be empty", tiers)
		}
	}

	if memoryStore.Len() != 0 || diskStore.Len() != 0 {
		t.Errorf("Expected stores to be empty, got memory=%d disk=%d", memoryStore.Len(), diskStore.Len())
	}
}

func TestCacheService_RemoveWithAllTiers(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestCacheService()
	r := request.New("http://host/image.png")

	service.StoreCachedImage(ctx, newTestContainer(), r, cache.TierAll)
	service.RemoveCachedImage(ctx, r, cache.TierAll)

	if _, ok := service.CachedImage(ctx, r, cache.TierAll); ok {
		t.Errorf("Expected image removed from every tier")
	}
}

func TestCacheService_WriteFlagsSkipExplicitTiers(t *testing.T) {
	ctx := context.Background()
	service, memoryStore, diskStore := newTestCacheService()

	noMemory := request.New("http://host/a.png")
	noMemory.Options.Memory.WriteAllowed = false
	service.StoreCachedImage(ctx, newTestContainer(), noMemory, cache.TierAll)

	if memoryStore.Len() != 0 {
		t.Errorf("Expected memory write to be skipped")
	}
	if diskStore.Len() != 1 {
		t.Errorf("Expected disk write to happen")
	}

	noDisk := request.New("http://host/b.png")
	noDisk.Options.Disk.WriteAllowed = false
	service.StoreCachedImage(ctx, newTestContainer(), noDisk, cache.TierAll)
	service.StoreCachedData(ctx, []byte("raw"), noDisk)

	if memoryStore.Len() != 1 {
		t.Errorf("Expected memory write to happen")
	}
	if diskStore.Has(service.MakeDiskKey(noDisk)) {
		t.Errorf("Expected disk write to be skipped")
	}
}

func TestCacheService_ReloadIgnoringCachedDataReturnsNothing(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestCacheService()
	r := request.New("http://host/image.png")

	service.StoreCachedImage(ctx, newTestContainer(), r, cache.TierAll)
	service.StoreCachedData(ctx, []byte("raw"), r)

	reload := r.WithPolicy(request.CachePolicyReloadIgnoringCachedData)
	for _, tiers := range []cache.Tier{cache.TierMemory, cache.TierDisk, cache.TierAll} {
		if _, ok := service.CachedImage(ctx, reload, tiers); ok {
			t.Errorf("Expected no image from %s tier", tiers)
		}
	}

	if _, ok := service.CachedData(ctx, reload); ok {
		t.Errorf("Expected no cached data")
	}
}

func TestCacheService_CachedDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestCacheService()
	r := request.New("http://host/image.png")

	service.StoreCachedData(ctx, []byte("raw"), r)

	data, ok := service.CachedData(ctx, r)
	if !ok || string(data) != "raw" {
		t.Fatalf("Expected cached data, got %q %v", data, ok)
	}

	service.RemoveCachedData(ctx, r)
	if _, ok := service.CachedData(ctx, r); ok {
		t.Errorf("Expected cached data to be removed")
	}
}

func TestCacheService_DiskFailuresAreTreatedAsMiss(t *testing.T) {
	ctx := context.Background()
	mockCtrl := gomock.NewController(t)
	mockDisk := mock_cache.NewMockDiskStore(mockCtrl)
	unavailable := errors.New("connection refused")

	mockDisk.EXPECT().Data(gomock.Any(), gomock.Any()).Return(nil, unavailable).Times(2)
	mockDisk.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return(unavailable)
	mockDisk.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(unavailable)
	mockDisk.EXPECT().RemoveAll(gomock.Any()).Return(unavailable)

	service := cache.NewCacheService(cache.Config{
		Disk:  mockDisk,
		Codec: decoder.NewImagingCodec(decoder.DefaultImagingCodecConfig()),
	})
	r := request.New("http://host/image.png")

	if _, ok := service.CachedImage(ctx, r, cache.TierDisk); ok {
		t.Errorf("Expected miss on unavailable disk")
	}
	if _, ok := service.CachedData(ctx, r); ok {
		t.Errorf("Expected miss on unavailable disk")
	}

	service.StoreCachedData(ctx, []byte("raw"), r)
	service.RemoveCachedData(ctx, r)
	service.RemoveAll(ctx)
}

func TestCacheService_MissingTiersBehaveAsEmpty(t *testing.T) {
	ctx := context.Background()
	service := cache.NewCacheService(cache.Config{})
	r := request.New("http://host/image.png")

	service.StoreCachedImage(ctx, newTestContainer(), r, cache.TierAll)
	service.StoreCachedData(ctx, []byte("raw"), r)

	if _, ok := service.CachedImage(ctx, r, cache.TierAll); ok {
		t.Errorf("Expected miss without stores")
	}
	if err := service.Flush(ctx); err != nil {
		t.Errorf("Expected no flush error, got %v", err)
	}
}
