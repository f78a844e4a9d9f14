package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"github.com/thebartekbanach/imgpipe/pkg/cache/invalidation"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := InitializeLogger()

	log.Info("initializing cache")
	memoryStore := InitializeMemoryStore(ctx, log)

	var diskStore cache.DiskStore
	var invalidator invalidation.Service
	background := &errgroup.Group{}

	switch backend := envOrDefault("IMGPIPE_DISK_BACKEND", "file"); backend {
	case "file":
		diskStore = InitializeFileStore(ctx, background, log)
	case "leveldb":
		diskStore = InitializeLevelDBStore(ctx, background, log)
	case "minio":
		cacheDBConnection := InitializeCacheDBConnection(ctx, log)
		indexedStore := InitializeMinioDiskStore(ctx, cacheDBConnection, log)
		invalidator = InitializeInvalidator(cacheDBConnection, indexedStore, memoryStore, log)
		diskStore = indexedStore
	case "none":
	default:
		log.Panicf("IMGPIPE_DISK_BACKEND must be one of file, leveldb, minio, none, got %q", backend)
	}

	log.Info("initializing pipeline")
	imagePipeline := InitializePipeline(memoryStore, diskStore, log)
	defer imagePipeline.Close()

	proxyService := InitializeProxy(imagePipeline, log)
	RegisterCacheGauges(imagePipeline, memoryStore)

	log.Info("registering http handlers")
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRequest(proxyService, log))
	mux.Handle("/status", promhttp.Handler())

	if invalidator != nil {
		mux.HandleFunc("/invalidate", handleInvalidationRequest(ctx, invalidator, log))
		mux.HandleFunc("/invalidation", handleLatestInvalidationInfoRequest(ctx, invalidator, log))
	}

	server := &http.Server{
		Addr:    envOrDefault("IMGPIPE_LISTEN_ADDRESS", ":80"),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http server shutdown failed")
		}
	}()

	log.WithField("address", server.Addr).Info("listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("http server failed")
	}

	imagePipeline.Close()
	cancel()

	log.Info("waiting for disk cache to flush")
	if err := background.Wait(); err != nil {
		log.WithError(err).Warn("closing disk cache failed")
	}
}
