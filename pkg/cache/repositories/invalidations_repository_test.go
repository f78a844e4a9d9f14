package cacherepositories

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	dbconnections "github.com/thebartekbanach/imgpipe/pkg/cache/repositories/connections"
	"go.mongodb.org/mongo-driver/bson"
)

func createInvalidationModel(projectName, commitHash string, creationTime time.Time, requestedInvalidations, invalidatedImages []string) InvalidationModel {
	invalidatedEntries := make([]CachedEntryModel, len(invalidatedImages))
	for i, image := range invalidatedImages {
		size := (i + 1) * 100
		invalidatedEntries[i] = CachedEntryModel{
			Key:      fmt.Sprintf("%s|resize(w=%v,h=%v)", image, size, size),
			Source:   image,
			Size:     int64(size * size),
			StoredAt: creationTime,
		}
	}

	return InvalidationModel{
		ProjectName: projectName,
		CommitHash:  commitHash,

		InvalidationDate:       creationTime,
		RequestedInvalidations: requestedInvalidations,
		InvalidatedEntries:     invalidatedEntries,
	}
}

func createSuccessfullInvalidationModel(projectName, commitHash string, creationTime time.Time, invalidatedImages []string) InvalidationModel {
	return createInvalidationModel(projectName, commitHash, creationTime, invalidatedImages, invalidatedImages)
}

func TestInvalidationsRepositoryIntegration_CreatesInvalidationCorrectly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info := createSuccessfullInvalidationModel("project", "abcdef", time.Now(), []string{
		"http://google.com/image1.jpg",
		"http://google.com/image2.jpg",
	})

	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	err := repo.CreateInvalidation(ctx, info)
	if err != nil {
		t.Errorf("Unexpected error when creating invalidation entry: %v", err)
	}

	invalidation, err := repo.GetLatestInvalidation(ctx, "project")
	if err != nil {
		t.Errorf("Unexpected error when getting latest invalidation: %v", err)
	}

	// we cant DeepEqual the whole objects, because InvalidationDate field differs a little bit
	if !reflect.DeepEqual(invalidation.RequestedInvalidations, info.RequestedInvalidations) {
		t.Errorf("Invalidation is not the same as the one created")
	}
}

func TestInvalidationsRepositoryIntegration_ReturnsLatestInvalidationInfo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info1 := createSuccessfullInvalidationModel("project", "abcdef", time.Now(), []string{
		"http://google.com/image1.jpg",
		"http://google.com/image2.jpg",
	})

	info2 := createSuccessfullInvalidationModel("project", "ghijkl", time.Now().Add(time.Minute), []string{
		"http://google.com/image3.jpg",
		"http://google.com/image4.jpg",
	})

	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	err := repo.CreateInvalidation(ctx, info1)
	if err != nil {
		t.Errorf("Unexpected error when creating first invalidation entry: %v", err)
	}

	err = repo.CreateInvalidation(ctx, info2)
	if err != nil {
		t.Errorf("Unexpected error when creating second invalidation entry: %v", err)
	}

	invalidation, err := repo.GetLatestInvalidation(ctx, "project")
	if err != nil {
		t.Errorf("Unexpected error when getting latest invalidation: %v", err)
	}

	// we cant DeepEqual the whole objects, because InvalidationDate field differs a little bit
	if !reflect.DeepEqual(invalidation.RequestedInvalidations, info2.RequestedInvalidations) {
		t.Errorf("Invalidation is not the same as the last one created: \n%v \n!= \n%v", info2.RequestedInvalidations, invalidation.RequestedInvalidations)
	}
}

func TestInvalidationsRepositoryIntegration_ReturnsErrCommitHashNotAllowedIfCommitHashIsEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info := createSuccessfullInvalidationModel("project", "", time.Now(), []string{
		"http://google.com/image1.jpg",
		"http://google.com/image2.jpg",
	})

	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	err := repo.CreateInvalidation(ctx, info)
	if err != ErrCommitHashNotAllowed {
		t.Errorf("Expected to return ErrCommitHashNotAllowed, got: %v", err)
	}
}

func TestInvalidationsRepositoryIntegration_ReturnsErrProjectNameNotAllowedIfProjectNameIsEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info := createSuccessfullInvalidationModel("", "abcdef", time.Now(), []string{
		"http://google.com/image1.jpg",
		"http://google.com/image2.jpg",
	})

	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	err := repo.CreateInvalidation(ctx, info)
	if err != ErrProjectNameNotAllowed {
		t.Errorf("Expected to return ErrProjectNameNotAllowed, got: %v", err)
	}
}

func TestInvalidationsRepositoryIntegration_ReturnsErrProjectNameNotAllowedIfTryingToGetLatestInvalidationWithEmptyProjectName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	_, err := repo.GetLatestInvalidation(ctx, "")
	if err != ErrProjectNameNotAllowed {
		t.Errorf("Expected to return ErrProjectNameNotAllowed, got: %v", err)
	}
}

func TestInvalidationsRepositoryIntegration_ReturnsErrProjectNotFoundIfThereIsNoInvalidationsAssociatedToProjectYet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	// the repository is empty at this point because we did not add anything
	_, err := repo.GetLatestInvalidation(ctx, "project")
	if err != ErrProjectNotFound {
		t.Errorf("Expected ErrProjectNotFound to be returned, got: %v", err)
	}
}

func TestInvalidationsRepositoryIntegration_CreatesLatestInvalidationIndexOnFirstWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	info := createSuccessfullInvalidationModel("project", "abcdef", time.Now(), []string{"http://google.com/image1.jpg"})
	if err := repo.CreateInvalidation(ctx, info); err != nil {
		t.Fatalf("Unexpected error when creating invalidation entry: %v", err)
	}

	cursor, err := conn.Collection("invalidations").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("Unexpected error when listing indexes: %v", err)
	}

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		t.Fatalf("Unexpected error when reading indexes: %v", err)
	}

	for _, index := range indexes {
		if index["name"] == "projectName_1_invalidationDate_-1" {
			return
		}
	}

	t.Errorf("Expected latest invalidation index to be created, got: %v", indexes)
}

func TestInvalidationsRepositoryIntegration_SetsInvalidationDateWhenMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping invalidationsRepository integration tests")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dbconnections.NewCacheDBTestingConnection(t)
	repo := NewInvalidationsRepository(conn)

	before := time.Now().Add(-time.Second)
	info := createSuccessfullInvalidationModel("project", "abcdef", time.Time{}, []string{"http://google.com/image1.jpg"})
	if err := repo.CreateInvalidation(ctx, info); err != nil {
		t.Fatalf("Unexpected error when creating invalidation entry: %v", err)
	}

	invalidation, err := repo.GetLatestInvalidation(ctx, "project")
	if err != nil {
		t.Fatalf("Unexpected error when getting latest invalidation: %v", err)
	}

	if invalidation.InvalidationDate.Before(before) {
		t.Errorf("Expected invalidation date to be set on creation, got: %v", invalidation.InvalidationDate)
	}
}
