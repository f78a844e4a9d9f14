package cacherepositories

import (
	"context"
	"errors"
	"sync"
	"time"

	dbconnections "github.com/thebartekbanach/imgpipe/pkg/cache/repositories/connections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const invalidationsCollection = "invalidations"

type invalidationsRepository struct {
	conn dbconnections.CacheDBConnection

	indexLock sync.Mutex
	indexed   bool
}

var _ InvalidationsRepository = (*invalidationsRepository)(nil)

func NewInvalidationsRepository(conn dbconnections.CacheDBConnection) InvalidationsRepository {
	return &invalidationsRepository{conn: conn}
}

// CreateInvalidation records an invalidation of cached sources. A zero
// InvalidationDate is set to the current time.
func (repo *invalidationsRepository) CreateInvalidation(ctx context.Context, invalidation InvalidationModel) error {
	if invalidation.ProjectName == "" {
		return ErrProjectNameNotAllowed
	}

	if invalidation.CommitHash == "" {
		return ErrCommitHashNotAllowed
	}

	if invalidation.InvalidationDate.IsZero() {
		invalidation.InvalidationDate = time.Now()
	}

	if err := repo.ensureIndex(ctx); err != nil {
		return err
	}

	_, err := repo.conn.Collection(invalidationsCollection).InsertOne(ctx, invalidation)
	return err
}

func (repo *invalidationsRepository) GetLatestInvalidation(ctx context.Context, projectName string) (InvalidationModel, error) {
	if projectName == "" {
		return InvalidationModel{}, ErrProjectNameNotAllowed
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "invalidationDate", Value: -1}})
	result := repo.conn.Collection(invalidationsCollection).FindOne(ctx, bson.M{"projectName": projectName}, opts)

	var invalidation InvalidationModel
	if err := result.Decode(&invalidation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return InvalidationModel{}, ErrProjectNotFound
		}

		return InvalidationModel{}, err
	}

	return invalidation, nil
}

// ensureIndex creates the index serving latest invalidation lookups on
// first write. A failed attempt is retried on the next write.
func (repo *invalidationsRepository) ensureIndex(ctx context.Context) error {
	repo.indexLock.Lock()
	defer repo.indexLock.Unlock()

	if repo.indexed {
		return nil
	}

	_, err := repo.conn.Collection(invalidationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "projectName", Value: 1},
			{Key: "invalidationDate", Value: -1},
		},
	})
	if err != nil {
		return err
	}

	repo.indexed = true
	return nil
}

var (
	ErrCommitHashNotAllowed  = errors.New("this commit hash is not allowed")
	ErrProjectNameNotAllowed = errors.New("this project name is not allowed")
	ErrProjectNotFound       = errors.New("project not found")
)
