package cache

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

type Config struct {
	// Memory and Disk are optional, a missing tier behaves as always empty.
	Memory MemoryStore
	Disk   DiskStore

	// Codec converts images stored in the disk tier.
	Codec decoder.Codec

	Logger *logrus.Entry
}

type cacheService struct {
	memory MemoryStore
	disk   DiskStore
	codec  decoder.Codec
	log    *logrus.Entry
}

var _ CacheService = (*cacheService)(nil)

func NewCacheService(config Config) CacheService {
	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &cacheService{
		memory: config.Memory,
		disk:   config.Disk,
		codec:  config.Codec,
		log:    log,
	}
}

func (s *cacheService) CachedImage(ctx context.Context, r request.Request, tiers ...Tier) (decoder.ImageContainer, bool) {
	selected := resolveTiers(tiers)

	if selected.Has(TierMemory) && s.memory != nil && r.CanReadMemory() {
		if container, ok := s.memory.Get(s.MakeMemoryKey(r)); ok {
			return container, true
		}
	}

	if selected.Has(TierDisk) && s.disk != nil && s.codec != nil && r.CanReadDisk() {
		data, ok := s.readDisk(ctx, s.MakeDiskKey(r))
		if !ok {
			return decoder.ImageContainer{}, false
		}

		container, err := s.codec.Decode(ctx, data, decoder.DecodeOptions{MaxPixelSize: r.Options.MaxPixelSize})
		if err != nil {
			s.log.WithError(err).WithField("key", s.MakeDiskKey(r)).Warn("cannot decode image from disk cache")
			return decoder.ImageContainer{}, false
		}

		return container, true
	}

	return decoder.ImageContainer{}, false
}

func (s *cacheService) StoreCachedImage(ctx context.Context, container decoder.ImageContainer, r request.Request, tiers ...Tier) {
	selected := resolveTiers(tiers)

	if selected.Has(TierMemory) && s.memory != nil && r.CanWriteMemory() {
		s.memory.Set(s.MakeMemoryKey(r), container)
	}

	if selected.Has(TierDisk) && s.disk != nil && s.codec != nil && r.CanWriteDisk() {
		data, err := s.codec.Encode(ctx, container)
		if err != nil {
			s.log.WithError(err).WithField("key", s.MakeDiskKey(r)).Warn("cannot encode image for disk cache")
			return
		}

		s.writeDisk(ctx, s.MakeDiskKey(r), data)
	}
}

func (s *cacheService) RemoveCachedImage(ctx context.Context, r request.Request, tiers ...Tier) {
	selected := resolveTiers(tiers)

	if selected.Has(TierMemory) && s.memory != nil {
		s.memory.Remove(s.MakeMemoryKey(r))
	}

	if selected.Has(TierDisk) && s.disk != nil {
		s.removeDisk(ctx, s.MakeDiskKey(r))
	}
}

func (s *cacheService) CachedData(ctx context.Context, r request.Request) ([]byte, bool) {
	if s.disk == nil || !r.CanReadDisk() {
		return nil, false
	}

	return s.readDisk(ctx, s.MakeDiskKey(r))
}

func (s *cacheService) StoreCachedData(ctx context.Context, data []byte, r request.Request) {
	if s.disk == nil || !r.CanWriteDisk() {
		return
	}

	s.writeDisk(ctx, s.MakeDiskKey(r), data)
}

func (s *cacheService) RemoveCachedData(ctx context.Context, r request.Request) {
	if s.disk == nil {
		return
	}

	s.removeDisk(ctx, s.MakeDiskKey(r))
}

func (s *cacheService) RemoveAll(ctx context.Context) {
	if s.memory != nil {
		s.memory.RemoveAll()
	}

	if s.disk != nil {
		if err := s.disk.RemoveAll(ctx); err != nil {
			s.log.WithError(err).WithField("tier", TierDisk.String()).Warn("cannot clear disk cache")
		}
	}
}

func (s *cacheService) Flush(ctx context.Context) error {
	if s.disk == nil {
		return nil
	}

	return s.disk.Flush(ctx)
}

func (s *cacheService) MakeMemoryKey(r request.Request) cachekey.MemoryKey {
	return cachekey.ForMemory(r)
}

func (s *cacheService) MakeDiskKey(r request.Request) string {
	return cachekey.ForDisk(r)
}

func (s *cacheService) Memory() MemoryStore {
	return s.memory
}

func (s *cacheService) Disk() DiskStore {
	return s.disk
}

func (s *cacheService) readDisk(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.disk.Data(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrEntryNotFound) {
			s.log.WithError(err).WithField("key", key).Warn("disk cache unavailable, treating as miss")
		}

		return nil, false
	}

	return data, true
}

func (s *cacheService) writeDisk(ctx context.Context, key string, data []byte) {
	if err := s.disk.Store(ctx, key, data); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cannot write to disk cache")
	}
}

func (s *cacheService) removeDisk(ctx context.Context, key string) {
	err := s.disk.Remove(ctx, key)
	if err != nil && !errors.Is(err, ErrEntryNotFound) {
		s.log.WithError(err).WithField("key", key).Warn("cannot remove entry from disk cache")
	}
}
