package main

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"github.com/thebartekbanach/imgpipe/pkg/cache/disk"
	"github.com/thebartekbanach/imgpipe/pkg/cache/memory"
	dbconnections "github.com/thebartekbanach/imgpipe/pkg/cache/repositories/connections"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/fetcher"
	"github.com/thebartekbanach/imgpipe/pkg/pipeline"
	"github.com/thebartekbanach/imgpipe/pkg/pressure"
	"github.com/thebartekbanach/imgpipe/pkg/proxy"
	"golang.org/x/sync/errgroup"
)

func InitializeLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(envOrDefault("IMGPIPE_LOG_LEVEL", "info"))
	if err != nil {
		logger.Panicf("Error ocurred when parsing IMGPIPE_LOG_LEVEL: %s", err)
	}

	logger.SetLevel(level)
	return logrus.NewEntry(logger)
}

func InitializeMemoryStoreConfig(log *logrus.Entry) memory.Config {
	config := memory.DefaultConfig()
	config.CostLimit = envInt64(log, "IMGPIPE_MEMORY_COST_LIMIT", config.CostLimit)
	config.CountLimit = int(envInt64(log, "IMGPIPE_MEMORY_COUNT_LIMIT", int64(config.CountLimit)))
	config.TTL = envDuration(log, "IMGPIPE_MEMORY_TTL", config.TTL)
	config.Logger = log
	return config
}

func InitializeHeapMonitorConfig(log *logrus.Entry) pressure.HeapMonitorConfig {
	config := pressure.DefaultHeapMonitorConfig()
	config.WarningHeapBytes = uint64(envInt64(log, "IMGPIPE_HEAP_WARNING_BYTES", 0))
	config.CriticalHeapBytes = uint64(envInt64(log, "IMGPIPE_HEAP_CRITICAL_BYTES", 0))
	config.Logger = log
	return config
}

// InitializePressureSignal starts the broadcaster together with the
// heap monitor feeding it, both stop with ctx.
func InitializePressureSignal(ctx context.Context, config pressure.HeapMonitorConfig) *pressure.Broadcaster {
	broadcaster := pressure.NewBroadcaster()
	go broadcaster.StartMonitor(ctx)

	monitor := pressure.NewHeapMonitor(config, broadcaster)
	go monitor.StartMonitor(ctx)

	return broadcaster
}

func NewMemoryStore(config memory.Config, signal *pressure.Broadcaster) *memory.Store {
	store := memory.NewStore(config)
	store.ListenTo(signal)
	return store
}

// InitializeFileStore opens the disk cache and starts flushing it in
// background, the last flush is part of background.Wait.
func InitializeFileStore(ctx context.Context, background *errgroup.Group, log *logrus.Entry) cache.DiskStore {
	config := disk.DefaultFileStoreConfig(envOrDefault("IMGPIPE_DISK_PATH", "/var/cache/imgpipe"))
	config.SizeLimit = envInt64(log, "IMGPIPE_DISK_SIZE_LIMIT", config.SizeLimit)
	config.FlushInterval = envDuration(log, "IMGPIPE_DISK_FLUSH_INTERVAL", config.FlushInterval)
	config.Logger = log

	store, err := disk.NewFileStore(config)
	if err != nil {
		log.Panicf("Error ocurred when initializing disk cache: %s", err)
	}

	background.Go(func() error {
		store.StartMonitor(ctx)
		return nil
	})

	return store
}

func InitializeLevelDBStore(ctx context.Context, background *errgroup.Group, log *logrus.Entry) cache.DiskStore {
	store, err := disk.OpenLevelDBStore(envOrDefault("IMGPIPE_DISK_PATH", "/var/cache/imgpipe"), log)
	if err != nil {
		log.Panicf("Error ocurred when opening LevelDB disk cache: %s", err)
	}

	background.Go(func() error {
		startFlushing(ctx, store, envDuration(log, "IMGPIPE_DISK_FLUSH_INTERVAL", time.Second), log)
		return store.Close()
	})

	return store
}

// startFlushing flushes the store periodically until ctx is done,
// then flushes one last time.
func startFlushing(ctx context.Context, store cache.DiskStore, interval time.Duration, log *logrus.Entry) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := store.Flush(context.Background()); err != nil {
				log.WithError(err).Warn("final disk cache flush failed")
			}
			return

		case <-ticker.C:
			if err := store.Flush(ctx); err != nil {
				log.WithError(err).Warn("disk cache flush failed")
			}
		}
	}
}

func InitializeMongoConnectionConfig(log *logrus.Entry) dbconnections.CacheDBConfig {
	config := dbconnections.CacheDBConfig{
		ConnectionString: os.Getenv("IMGPIPE_MONGO_CONNECTION_STRING"),
	}

	if config.ConnectionString == "" {
		log.Panic("IMGPIPE_MONGO_CONNECTION_STRING is required environment variable")
	}

	parsedConnectionString, err := url.Parse(config.ConnectionString)
	if err != nil {
		log.Panicf("Error ocurred when parsing IMGPIPE_MONGO_CONNECTION_STRING: %s", err)
	}

	if parsedConnectionString.User == nil {
		log.Panic("IMGPIPE_MONGO_CONNECTION_STRING must contain credentials")
	}

	return config
}

func InitializeMongoConnection(ctx context.Context, mongoConfig dbconnections.CacheDBConfig, log *logrus.Entry) dbconnections.CacheDBConnection {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cacheDbConnection, err := dbconnections.NewCacheDBProductionConnection(ctx, mongoConfig)
	if err != nil {
		log.Panicf("Error ocurred when initializing MongoDB connection: %s", err)
	}

	return cacheDbConnection
}

func InitializeMinioConnectionConfig(log *logrus.Entry) dbconnections.MinioBlockStorageProductionConnectionConfig {
	config := dbconnections.MinioBlockStorageProductionConnectionConfig{
		Endpoint:  os.Getenv("IMGPIPE_MINIO_ENDPOINT"),
		AccessKey: os.Getenv("IMGPIPE_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("IMGPIPE_MINIO_SECRET_KEY"),
		Location:  envOrDefault("IMGPIPE_MINIO_LOCATION", "us-east-1"),
		Bucket:    os.Getenv("IMGPIPE_MINIO_BUCKET"),
		UseSSL:    os.Getenv("IMGPIPE_MINIO_SSL") == "true",
	}

	if config.Endpoint == "" {
		log.Panic("IMGPIPE_MINIO_ENDPOINT is required environment variable")
	}

	if config.AccessKey == "" {
		log.Panic("IMGPIPE_MINIO_ACCESS_KEY is required environment variable")
	}

	if config.SecretKey == "" {
		log.Panic("IMGPIPE_MINIO_SECRET_KEY is required environment variable")
	}

	if config.Bucket == "" {
		log.Panic("IMGPIPE_MINIO_BUCKET is required environment variable")
	}

	return config
}

func InitializeMinioConnection(ctx context.Context, minioConfig dbconnections.MinioBlockStorageProductionConnectionConfig, log *logrus.Entry) dbconnections.MinioBlockStorageConnection {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	minioBlockStorageConnection, err := dbconnections.NewMinioBlockStorageProductionConnection(ctx, minioConfig)
	if err != nil {
		log.Panicf("Error ocurred when initializing Minio connection: %s", err)
	}

	return &minioBlockStorageConnection
}

func InitializeCodec() decoder.Codec {
	return decoder.NewImagingCodec(decoder.DefaultImagingCodecConfig())
}

func InitializePipelineConfig(memoryStore *memory.Store, diskStore cache.DiskStore, codec decoder.Codec, log *logrus.Entry) pipeline.Config {
	loaderConfig := fetcher.DefaultHTTPLoaderConfig()
	loaderConfig.MaxBodySize = envInt64(log, "IMGPIPE_MAX_SOURCE_SIZE", loaderConfig.MaxBodySize)

	config := pipeline.Config{
		Loader: fetcher.NewHTTPLoader(loaderConfig),
		Codec:  codec,
		Cache: cache.NewCacheService(cache.Config{
			Memory: memoryStore,
			Disk:   diskStore,
			Codec:  codec,
			Logger: log,
		}),
		IsDeduplicationEnabled: os.Getenv("IMGPIPE_DEDUPLICATION") != "false",
		Logger:                 log,
	}

	switch policy := envOrDefault("IMGPIPE_DISK_CACHE_POLICY", "original"); policy {
	case "original":
		config.DiskCachePolicy = pipeline.DiskCachePolicyStoreOriginalData
	case "encoded":
		config.DiskCachePolicy = pipeline.DiskCachePolicyStoreEncodedImages
	case "all":
		config.DiskCachePolicy = pipeline.DiskCachePolicyStoreAll
	default:
		log.Panicf("IMGPIPE_DISK_CACHE_POLICY must be one of original, encoded, all, got %q", policy)
	}

	return config
}

func InitializeProxyConfig() proxy.ProxyServiceConfig {
	config := proxy.ProxyServiceConfig{
		AllowedDomains: strings.Split(os.Getenv("IMGPIPE_ALLOWED_DOMAINS"), ","),
		AllowedOrigins: strings.Split(os.Getenv("IMGPIPE_ALLOWED_ORIGINS"), ","),
	}

	if len(config.AllowedDomains) == 0 || config.AllowedDomains[0] == "" && len(config.AllowedDomains) == 1 {
		config.AllowedDomains = []string{"*"}
	}

	if len(config.AllowedOrigins) == 0 || config.AllowedOrigins[0] == "" && len(config.AllowedOrigins) == 1 {
		config.AllowedOrigins = []string{"*"}
	}

	return config
}

func InitializeProxyMetrics() *proxy.Metrics {
	return proxy.NewMetrics(prometheus.DefaultRegisterer)
}

// RegisterCacheGauges exposes the pipeline and memory store state on /status.
func RegisterCacheGauges(imagePipeline *pipeline.Pipeline, memoryStore *memory.Store) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "imgpipe",
			Subsystem: "pipeline",
			Name:      "in_flight_loads",
			Help:      "Number of image loads currently in flight.",
		}, func() float64 { return float64(imagePipeline.InFlight()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "imgpipe",
			Subsystem: "memory_cache",
			Name:      "cost_bytes",
			Help:      "Total cost of images held in the memory cache.",
		}, func() float64 { return float64(memoryStore.TotalCost()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "imgpipe",
			Subsystem: "memory_cache",
			Name:      "entries",
			Help:      "Number of images held in the memory cache.",
		}, func() float64 { return float64(memoryStore.Len()) }),
	)
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}

	return fallback
}

func envInt64(log *logrus.Entry, name string, fallback int64) int64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		log.Panicf("%s must be a non negative integer, got %q", name, raw)
	}

	return value
}

func envDuration(log *logrus.Entry, name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Panicf("Error ocurred when parsing %s: %s", name, err)
	}

	return value
}
