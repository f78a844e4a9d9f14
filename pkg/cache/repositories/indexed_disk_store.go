package cacherepositories

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
)

// IndexedDiskStore records every entry written to the wrapped store in
// a CachedEntriesRepository, so all entries derived from a source image
// can be found and removed later.
type IndexedDiskStore struct {
	store   cache.DiskStore
	entries CachedEntriesRepository
	log     *logrus.Entry
	now     func() time.Time
}

var _ cache.DiskStore = (*IndexedDiskStore)(nil)

func NewIndexedDiskStore(store cache.DiskStore, entries CachedEntriesRepository, log *logrus.Entry) *IndexedDiskStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &IndexedDiskStore{
		store:   store,
		entries: entries,
		log:     log.WithField("tier", cache.TierDisk.String()),
		now:     time.Now,
	}
}

func (s *IndexedDiskStore) Data(ctx context.Context, key string) ([]byte, error) {
	return s.store.Data(ctx, key)
}

// Store writes the data before indexing it. Indexing failures are
// logged only.
func (s *IndexedDiskStore) Store(ctx context.Context, key string, data []byte) error {
	if err := s.store.Store(ctx, key, data); err != nil {
		return err
	}

	entry := CachedEntryModel{
		Key:      key,
		Source:   cachekey.SourceOf(key),
		Size:     int64(len(data)),
		StoredAt: s.now(),
	}

	if err := s.entries.SaveCachedEntry(ctx, entry); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cannot index disk cache entry")
	}

	return nil
}

func (s *IndexedDiskStore) Remove(ctx context.Context, key string) error {
	err := s.store.Remove(ctx, key)
	if indexErr := s.entries.DeleteCachedEntry(ctx, key); indexErr != nil && !errors.Is(indexErr, ErrCachedEntryNotFound) {
		s.log.WithError(indexErr).WithField("key", key).Warn("cannot remove disk cache entry from index")
	}

	return err
}

func (s *IndexedDiskStore) RemoveAll(ctx context.Context) error {
	if err := s.store.RemoveAll(ctx); err != nil {
		return err
	}

	return s.entries.DeleteAllCachedEntries(ctx)
}

func (s *IndexedDiskStore) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

// RemoveSource removes every indexed entry derived from source and
// returns the removed entries. It stops at the first failure.
func (s *IndexedDiskStore) RemoveSource(ctx context.Context, source string) ([]CachedEntryModel, error) {
	entries, err := s.entries.GetCachedEntriesOfSource(ctx, source)
	if err != nil {
		return nil, err
	}

	removed := []CachedEntryModel{}
	for _, entry := range entries {
		if err := s.Remove(ctx, entry.Key); err != nil && !errors.Is(err, cache.ErrEntryNotFound) {
			return removed, err
		}

		removed = append(removed, entry)
	}

	return removed, nil
}
