//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"github.com/thebartekbanach/imgpipe/pkg/cache/invalidation"
	"github.com/thebartekbanach/imgpipe/pkg/cache/memory"
	cacherepositories "github.com/thebartekbanach/imgpipe/pkg/cache/repositories"
	dbconnections "github.com/thebartekbanach/imgpipe/pkg/cache/repositories/connections"
	"github.com/thebartekbanach/imgpipe/pkg/pipeline"
	"github.com/thebartekbanach/imgpipe/pkg/proxy"
)

func InitializeMemoryStore(ctx context.Context, log *logrus.Entry) *memory.Store {
	wire.Build(
		InitializeMemoryStoreConfig,
		InitializeHeapMonitorConfig,
		InitializePressureSignal,
		NewMemoryStore,
	)

	return &memory.Store{}
}

func InitializeCacheDBConnection(ctx context.Context, log *logrus.Entry) dbconnections.CacheDBConnection {
	wire.Build(
		InitializeMongoConnectionConfig,
		InitializeMongoConnection,
	)

	return nil
}

func InitializeMinioDiskStore(ctx context.Context, cacheDBConnection dbconnections.CacheDBConnection, log *logrus.Entry) *cacherepositories.IndexedDiskStore {
	wire.Build(
		InitializeMinioConnectionConfig,
		InitializeMinioConnection,
		cacherepositories.NewMinioDataStore,
		wire.Bind(new(cache.DiskStore), new(*cacherepositories.MinioDataStore)),

		cacherepositories.NewCachedEntriesRepository,

		cacherepositories.NewIndexedDiskStore,
	)

	return &cacherepositories.IndexedDiskStore{}
}

func InitializeInvalidator(cacheDBConnection dbconnections.CacheDBConnection, diskStore *cacherepositories.IndexedDiskStore, memoryStore *memory.Store, log *logrus.Entry) invalidation.Service {
	wire.Build(
		cacherepositories.NewInvalidationsRepository,

		wire.Bind(new(invalidation.SourceRemover), new(*cacherepositories.IndexedDiskStore)),
		wire.Bind(new(invalidation.MemoryRemover), new(*memory.Store)),
		invalidation.NewService,
	)

	return nil
}

func InitializePipeline(memoryStore *memory.Store, diskStore cache.DiskStore, log *logrus.Entry) *pipeline.Pipeline {
	wire.Build(
		InitializeCodec,
		InitializePipelineConfig,
		pipeline.New,
	)

	return &pipeline.Pipeline{}
}

func InitializeProxy(imagePipeline *pipeline.Pipeline, log *logrus.Entry) proxy.ProxyService {
	wire.Build(
		InitializeProxyConfig,
		InitializeCodec,
		InitializeProxyMetrics,
		wire.Bind(new(proxy.ImageLoader), new(*pipeline.Pipeline)),
		proxy.NewProxyService,
	)

	return nil
}
