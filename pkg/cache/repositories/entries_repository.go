package cacherepositories

import (
	"context"
	"errors"

	dbconnections "github.com/thebartekbanach/imgpipe/pkg/cache/repositories/connections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cachedEntriesRepository struct {
	conn dbconnections.CacheDBConnection
}

var _ CachedEntriesRepository = (*cachedEntriesRepository)(nil)

func NewCachedEntriesRepository(conn dbconnections.CacheDBConnection) CachedEntriesRepository {
	return &cachedEntriesRepository{conn}
}

// SaveCachedEntry creates the entry or replaces the one stored under the same key.
func (repo *cachedEntriesRepository) SaveCachedEntry(ctx context.Context, entry CachedEntryModel) error {
	if entry.Key == "" {
		return ErrEntryKeyNotAllowed
	}

	collection := repo.conn.Collection("cachedEntries")
	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"key": entry.Key}, entry, opts)
	return err
}

func (repo *cachedEntriesRepository) DeleteCachedEntry(ctx context.Context, key string) error {
	collection := repo.conn.Collection("cachedEntries")

	result, err := collection.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrCachedEntryNotFound
	}

	return nil
}

func (repo *cachedEntriesRepository) GetCachedEntry(ctx context.Context, key string) (CachedEntryModel, error) {
	collection := repo.conn.Collection("cachedEntries")

	var entry CachedEntryModel
	if err := collection.FindOne(ctx, bson.M{"key": key}).Decode(&entry); err != nil {
		if err == mongo.ErrNoDocuments {
			return entry, ErrCachedEntryNotFound
		}

		return CachedEntryModel{}, err
	}

	return entry, nil
}

func (repo *cachedEntriesRepository) GetCachedEntriesOfSource(ctx context.Context, source string) ([]CachedEntryModel, error) {
	collection := repo.conn.Collection("cachedEntries")

	cursor, err := collection.Find(ctx, bson.M{"source": source})
	if err != nil {
		return nil, err
	}

	entries := []CachedEntryModel{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (repo *cachedEntriesRepository) DeleteAllCachedEntries(ctx context.Context) error {
	collection := repo.conn.Collection("cachedEntries")
	_, err := collection.DeleteMany(ctx, bson.M{})
	return err
}

var (
	ErrCachedEntryNotFound = errors.New("cached entry not found")
	ErrEntryKeyNotAllowed  = errors.New("this entry key is not allowed")
)
