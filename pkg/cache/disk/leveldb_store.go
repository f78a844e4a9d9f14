package disk

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
)

// LevelDBStore keeps entries in a LevelDB database. Changes are
// collected in a batch and committed on Flush, readers see them
// before that.
type LevelDBStore struct {
	db  *leveldb.DB
	log *logrus.Entry

	lock     sync.RWMutex
	batch    *leveldb.Batch
	pending  map[string][]byte
	flushing map[string][]byte

	flushLock sync.Mutex
}

var _ cache.DiskStore = (*LevelDBStore)(nil)

func OpenLevelDBStore(path string, log *logrus.Entry) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return NewLevelDBStore(db, log), nil
}

func NewLevelDBStore(db *leveldb.DB, log *logrus.Entry) *LevelDBStore {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &LevelDBStore{
		db:       db,
		log:      log.WithField("tier", cache.TierDisk.String()),
		batch:    new(leveldb.Batch),
		pending:  make(map[string][]byte),
		flushing: make(map[string][]byte),
	}
}

// nil values in pending and flushing maps mark removed keys.
func (s *LevelDBStore) Data(ctx context.Context, key string) ([]byte, error) {
	s.lock.RLock()
	data, staged := s.pending[key]
	if !staged {
		data, staged = s.flushing[key]
	}
	s.lock.RUnlock()

	if staged {
		if data == nil {
			return nil, cache.ErrEntryNotFound
		}

		return append([]byte(nil), data...), nil
	}

	data, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, cache.ErrEntryNotFound
	}

	return data, err
}

func (s *LevelDBStore) Store(ctx context.Context, key string, data []byte) error {
	data = append(make([]byte, 0, len(data)), data...)

	s.lock.Lock()
	defer s.lock.Unlock()

	s.batch.Put([]byte(key), data)
	s.pending[key] = data
	return nil
}

func (s *LevelDBStore) Remove(ctx context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.batch.Delete([]byte(key))
	s.pending[key] = nil
	return nil
}

func (s *LevelDBStore) RemoveAll(ctx context.Context) error {
	s.flushLock.Lock()
	defer s.flushLock.Unlock()

	s.lock.Lock()
	s.batch.Reset()
	s.pending = make(map[string][]byte)
	s.lock.Unlock()

	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()

	if err := iter.Error(); err != nil {
		return err
	}

	return s.db.Write(batch, nil)
}

// Flush commits the collected batch.
func (s *LevelDBStore) Flush(ctx context.Context) error {
	s.flushLock.Lock()
	defer s.flushLock.Unlock()

	s.lock.Lock()
	if s.batch.Len() == 0 {
		s.lock.Unlock()
		return nil
	}

	batch := s.batch
	s.batch = new(leveldb.Batch)
	s.flushing = s.pending
	s.pending = make(map[string][]byte)
	s.lock.Unlock()

	err := s.db.Write(batch, nil)

	s.lock.Lock()
	if err != nil {
		// put the failed changes back in front of the newer ones
		merged := new(leveldb.Batch)
		batch.Replay(merged)
		s.batch.Replay(merged)
		s.batch = merged
		for key, data := range s.pending {
			s.flushing[key] = data
		}
		s.pending = s.flushing
	}
	s.flushing = make(map[string][]byte)
	s.lock.Unlock()

	if err != nil {
		s.log.WithError(err).Warn("cannot commit disk cache batch")
	}

	return err
}

func (s *LevelDBStore) Close() error {
	if err := s.Flush(context.Background()); err != nil {
		return err
	}

	return s.db.Close()
}
