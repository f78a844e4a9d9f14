package cacherepositories

import (
	"bytes"
	"context"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	dbconnections "github.com/thebartekbanach/imgpipe/pkg/cache/repositories/connections"
)

// MinioDataStore keeps the disk tier in a MinIO bucket. Writes are
// uploaded immediately, so Flush has nothing to do.
type MinioDataStore struct {
	conn dbconnections.MinioBlockStorageConnection
}

var _ cache.DiskStore = (*MinioDataStore)(nil)

func NewMinioDataStore(conn dbconnections.MinioBlockStorageConnection) *MinioDataStore {
	return &MinioDataStore{conn}
}

func (s *MinioDataStore) Data(ctx context.Context, key string) ([]byte, error) {
	object, err := s.conn.GetObject(ctx, s.makeObjectName(key))
	if err != nil {
		return nil, s.convertToKnownError(err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, s.convertToKnownError(err)
	}

	return data, nil
}

func (s *MinioDataStore) Store(ctx context.Context, key string, data []byte) error {
	return s.conn.PutObject(ctx, s.makeObjectName(key), int64(len(data)), "application/octet-stream", bytes.NewReader(data))
}

func (s *MinioDataStore) Remove(ctx context.Context, key string) error {
	objectName := s.makeObjectName(key)
	exists, err := s.conn.ObjectExists(ctx, objectName)
	if err != nil {
		return err
	}
	if !exists {
		return cache.ErrEntryNotFound
	}

	return s.conn.DeleteObject(ctx, objectName)
}

func (s *MinioDataStore) RemoveAll(ctx context.Context) error {
	names, err := s.conn.ListObjectNames(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := s.conn.DeleteObject(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

func (s *MinioDataStore) Flush(ctx context.Context) error {
	return nil
}

func (s *MinioDataStore) convertToKnownError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return cache.ErrEntryNotFound
	}

	return err
}

func (s *MinioDataStore) makeObjectName(key string) string {
	return url.PathEscape(key)
}
