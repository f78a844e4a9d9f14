package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"golang.org/x/sync/errgroup"
)

// FilenameGenerator maps a cache key to a file name. Returning an
// empty name disables caching of the key.
type FilenameGenerator func(key string) string

func HashFilename(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

type FileStoreConfig struct {
	Path              string
	FilenameGenerator FilenameGenerator

	// SizeLimit triggers a sweep after flush once the directory grows
	// above it. Zero disables sweeping.
	SizeLimit int64

	// TrimRatio is the part of SizeLimit kept by a sweep.
	TrimRatio float64

	// FlushInterval is used by StartMonitor, zero disables periodic flush.
	FlushInterval time.Duration

	// FlushConcurrency limits parallel file writes during a flush.
	FlushConcurrency int

	Logger *logrus.Entry
}

func DefaultFileStoreConfig(path string) FileStoreConfig {
	return FileStoreConfig{
		Path:              path,
		FilenameGenerator: HashFilename,
		SizeLimit:         150 * 1024 * 1024,
		TrimRatio:         0.7,
		FlushInterval:     time.Second,
		FlushConcurrency:  4,
	}
}

type stagedChange struct {
	data   []byte
	remove bool
}

// FileStore keeps one file per entry. Writes and removals are staged in
// memory and visible to readers immediately, Flush persists them.
type FileStore struct {
	config FileStoreConfig
	log    *logrus.Entry

	lock   sync.RWMutex
	staged map[string]*stagedChange

	// serializes flushes, sweeps and RemoveAll
	flushLock sync.Mutex
}

var _ cache.DiskStore = (*FileStore)(nil)

func NewFileStore(config FileStoreConfig) (*FileStore, error) {
	if config.Path == "" {
		return nil, ErrPathNotSet
	}

	if config.FilenameGenerator == nil {
		config.FilenameGenerator = HashFilename
	}

	if config.TrimRatio <= 0 || config.TrimRatio > 1 {
		config.TrimRatio = DefaultFileStoreConfig("").TrimRatio
	}

	if config.FlushConcurrency < 1 {
		config.FlushConcurrency = 1
	}

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &FileStore{
		config: config,
		log:    log.WithField("tier", cache.TierDisk.String()),
		staged: make(map[string]*stagedChange),
	}, nil
}

func (s *FileStore) Data(ctx context.Context, key string) ([]byte, error) {
	name := s.config.FilenameGenerator(key)
	if name == "" {
		return nil, cache.ErrEntryNotFound
	}

	s.lock.RLock()
	change, staged := s.staged[name]
	s.lock.RUnlock()

	if staged {
		if change.remove {
			return nil, cache.ErrEntryNotFound
		}

		return append([]byte(nil), change.data...), nil
	}

	data, err := os.ReadFile(s.filePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cache.ErrEntryNotFound
	}

	return data, err
}

func (s *FileStore) Store(ctx context.Context, key string, data []byte) error {
	return s.stage(key, &stagedChange{data: append([]byte(nil), data...)})
}

func (s *FileStore) Remove(ctx context.Context, key string) error {
	return s.stage(key, &stagedChange{remove: true})
}

func (s *FileStore) RemoveAll(ctx context.Context) error {
	s.flushLock.Lock()
	defer s.flushLock.Unlock()

	s.lock.Lock()
	s.staged = make(map[string]*stagedChange)
	s.lock.Unlock()

	entries, err := os.ReadDir(s.config.Path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := os.RemoveAll(s.filePath(entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// Flush writes every staged change to disk. Changes staged while
// flushing are left for the next flush.
func (s *FileStore) Flush(ctx context.Context) error {
	s.flushLock.Lock()
	defer s.flushLock.Unlock()

	s.lock.RLock()
	snapshot := make(map[string]*stagedChange, len(s.staged))
	for name, change := range s.staged {
		snapshot[name] = change
	}
	s.lock.RUnlock()

	if len(snapshot) == 0 {
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.FlushConcurrency)

	written := sync.Map{}
	for name, change := range snapshot {
		name, change := name, change
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			if err := s.apply(name, change); err != nil {
				return fmt.Errorf("flush %s: %w", name, err)
			}

			written.Store(name, change)
			return nil
		})
	}

	err := group.Wait()

	s.lock.Lock()
	written.Range(func(name, change interface{}) bool {
		if s.staged[name.(string)] == change.(*stagedChange) {
			delete(s.staged, name.(string))
		}
		return true
	})
	s.lock.Unlock()

	if err != nil {
		return err
	}

	return s.sweep()
}

// StartMonitor flushes staged changes periodically until ctx is done,
// then flushes one last time.
func (s *FileStore) StartMonitor(ctx context.Context) {
	defer func() {
		if err := s.Flush(context.Background()); err != nil {
			s.log.WithError(err).Warn("final disk cache flush failed")
		}
	}()

	if s.config.FlushInterval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.log.WithError(err).Warn("disk cache flush failed")
			}
		}
	}
}

// TotalSize returns the size of flushed entries.
func (s *FileStore) TotalSize() (int64, error) {
	files, err := s.listFiles()
	if err != nil {
		return 0, err
	}

	total := int64(0)
	for _, file := range files {
		total += file.size
	}

	return total, nil
}

func (s *FileStore) stage(key string, change *stagedChange) error {
	name := s.config.FilenameGenerator(key)
	if name == "" {
		return nil
	}

	s.lock.Lock()
	s.staged[name] = change
	s.lock.Unlock()

	return nil
}

func (s *FileStore) apply(name string, change *stagedChange) error {
	if change.remove {
		err := os.Remove(s.filePath(name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	temp := s.filePath(tempPrefix + uuid.New().String())
	if err := os.WriteFile(temp, change.data, 0o644); err != nil {
		os.Remove(temp)
		return err
	}

	return os.Rename(temp, s.filePath(name))
}

type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (s *FileStore) listFiles() ([]fileInfo, error) {
	entries, err := os.ReadDir(s.config.Path)
	if err != nil {
		return nil, err
	}

	files := make([]fileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removed in the meantime
			continue
		}

		files = append(files, fileInfo{entry.Name(), info.Size(), info.ModTime()})
	}

	return files, nil
}

// sweep removes the oldest files once the size limit is exceeded.
// Must be called with flushLock held.
func (s *FileStore) sweep() error {
	if s.config.SizeLimit <= 0 {
		return nil
	}

	files, err := s.listFiles()
	if err != nil {
		return err
	}

	total := int64(0)
	for _, file := range files {
		total += file.size
	}

	if total <= s.config.SizeLimit {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	target := int64(float64(s.config.SizeLimit) * s.config.TrimRatio)
	removed := 0
	for _, file := range files {
		if total <= target {
			break
		}

		if err := os.Remove(s.filePath(file.name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		total -= file.size
		removed++
	}

	s.log.WithFields(logrus.Fields{"removed": removed, "size": total}).Debug("disk cache swept")
	return nil
}

func (s *FileStore) filePath(name string) string {
	return filepath.Join(s.config.Path, name)
}

const tempPrefix = ".tmp-"

var (
	ErrPathNotSet = errors.New("disk cache path not set")
)
