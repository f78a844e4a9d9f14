package invalidation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	cacherepositories "github.com/thebartekbanach/imgpipe/pkg/cache/repositories"
)

// SourceRemover removes every disk entry derived from a source image.
type SourceRemover interface {
	RemoveSource(ctx context.Context, source string) ([]cacherepositories.CachedEntryModel, error)
}

// MemoryRemover removes every memory entry derived from a source image.
type MemoryRemover interface {
	RemoveIdentity(identity string) int
}

type Service interface {
	GetLastKnownInvalidation(ctx context.Context, projectName string) (cacherepositories.InvalidationModel, error)

	// Invalidate removes all cached renditions of the given sources and
	// records the outcome. It stops at the first source that fails.
	Invalidate(ctx context.Context, projectName, latestCommitHash string, sources []string) (cacherepositories.InvalidationModel, error)
}

type service struct {
	invalidationsRepository cacherepositories.InvalidationsRepository
	disk                    SourceRemover
	memory                  MemoryRemover
	log                     *logrus.Entry
}

var _ Service = (*service)(nil)

// NewService creates the invalidation service, memory may be nil.
func NewService(invalidationsRepository cacherepositories.InvalidationsRepository, disk SourceRemover, memory MemoryRemover, log *logrus.Entry) Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &service{invalidationsRepository, disk, memory, log}
}

func (s *service) GetLastKnownInvalidation(ctx context.Context, projectName string) (cacherepositories.InvalidationModel, error) {
	if projectName == "" {
		return cacherepositories.InvalidationModel{}, cacherepositories.ErrProjectNameNotAllowed
	}

	return s.invalidationsRepository.GetLatestInvalidation(ctx, projectName)
}

func (s *service) Invalidate(ctx context.Context, projectName, latestCommitHash string, sources []string) (cacherepositories.InvalidationModel, error) {
	if projectName == "" {
		return cacherepositories.InvalidationModel{}, cacherepositories.ErrProjectNameNotAllowed
	}

	if latestCommitHash == "" {
		return cacherepositories.InvalidationModel{}, cacherepositories.ErrCommitHashNotAllowed
	}

	invalidationInfo := cacherepositories.InvalidationModel{
		ProjectName:            projectName,
		CommitHash:             latestCommitHash,
		RequestedInvalidations: sources,
		DoneInvalidations:      []string{},
		InvalidatedEntries:     []cacherepositories.CachedEntryModel{},
	}

	var invalidationError error

	for _, source := range sources {
		if s.memory != nil {
			s.memory.RemoveIdentity(source)
		}

		removedEntries, err := s.disk.RemoveSource(ctx, source)
		invalidationInfo.InvalidatedEntries = append(invalidationInfo.InvalidatedEntries, removedEntries...)

		if err != nil {
			invalidationError = err
			errText := err.Error()
			invalidationInfo.InvalidationError = &errText
			break
		}

		invalidationInfo.DoneInvalidations = append(invalidationInfo.DoneInvalidations, source)
	}

	s.log.WithFields(logrus.Fields{
		"project": projectName,
		"commit":  latestCommitHash,
		"done":    len(invalidationInfo.DoneInvalidations),
		"entries": len(invalidationInfo.InvalidatedEntries),
	}).Info("cache invalidated")

	invalidationInfo.InvalidationDate = time.Now()
	if err := s.invalidationsRepository.CreateInvalidation(ctx, invalidationInfo); err != nil {
		return invalidationInfo, err
	}

	return invalidationInfo, invalidationError
}
