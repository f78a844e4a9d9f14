package cacherepositories

import (
	"context"
	"time"
)

// CachedEntryModel describes one entry of the disk tier, keyed by
// its disk key and indexed by the identity of the source image.
type CachedEntryModel struct {
	Key      string    `json:"key" bson:"key"`
	Source   string    `json:"source" bson:"source"`
	Size     int64     `json:"size" bson:"size"`
	StoredAt time.Time `json:"storedAt" bson:"storedAt"`
}

type InvalidationModel struct {
	ProjectName string `json:"projectName" bson:"projectName"`
	CommitHash  string `json:"commitHash" bson:"commitHash"`

	InvalidationDate       time.Time          `json:"invalidationDate" bson:"invalidationDate"`
	RequestedInvalidations []string           `json:"requestedInvalidations" bson:"requestedInvalidations"`
	DoneInvalidations      []string           `json:"doneInvalidations" bson:"doneInvalidations"`
	InvalidatedEntries     []CachedEntryModel `json:"invalidatedEntries" bson:"invalidatedEntries"`
	InvalidationError      *string            `json:"invalidationError" bson:"invalidationError"`
}

type CachedEntriesRepository interface {
	SaveCachedEntry(ctx context.Context, entry CachedEntryModel) error
	DeleteCachedEntry(ctx context.Context, key string) error
	GetCachedEntry(ctx context.Context, key string) (CachedEntryModel, error)
	GetCachedEntriesOfSource(ctx context.Context, source string) ([]CachedEntryModel, error)
	DeleteAllCachedEntries(ctx context.Context) error
}

type InvalidationsRepository interface {
	CreateInvalidation(ctx context.Context, invalidation InvalidationModel) error
	GetLatestInvalidation(ctx context.Context, projectName string) (InvalidationModel, error)
}
