package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cache"
	"github.com/thebartekbanach/imgpipe/pkg/cache/memory"
	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/fetcher"
	"github.com/thebartekbanach/imgpipe/pkg/hub"
	"github.com/thebartekbanach/imgpipe/pkg/processor"
	"github.com/thebartekbanach/imgpipe/pkg/request"
	"github.com/thebartekbanach/imgpipe/pkg/scheduler"
)

type DiskCachePolicy int

const (
	// DiskCachePolicyStoreOriginalData stores fetched bytes under the
	// original data key, processed images are recomputed from them.
	DiskCachePolicyStoreOriginalData DiskCachePolicy = iota

	// DiskCachePolicyStoreEncodedImages stores every delivered image
	// encoded under its disk key.
	DiskCachePolicyStoreEncodedImages

	// DiskCachePolicyStoreAll stores both original data and processed images.
	DiskCachePolicyStoreAll
)

type Config struct {
	Loader fetcher.DataLoader
	Codec  decoder.Codec
	Cache  cache.CacheService

	// Schedulers passed in are retained and may be shared with other
	// pipelines, missing ones are created and owned by the pipeline.
	FetchScheduler   *scheduler.Scheduler
	DecodeScheduler  *scheduler.Scheduler
	ProcessScheduler *scheduler.Scheduler
	EncodeScheduler  *scheduler.Scheduler

	IsDeduplicationEnabled bool
	DiskCachePolicy        DiskCachePolicy

	Logger *logrus.Entry
}

func DefaultConfig() Config {
	codec := decoder.NewImagingCodec(decoder.DefaultImagingCodecConfig())

	return Config{
		Loader: fetcher.NewHTTPLoader(fetcher.DefaultHTTPLoaderConfig()),
		Codec:  codec,
		Cache: cache.NewCacheService(cache.Config{
			Memory: memory.NewStore(memory.DefaultConfig()),
			Codec:  codec,
		}),
		IsDeduplicationEnabled: true,
		DiskCachePolicy:        DiskCachePolicyStoreOriginalData,
	}
}

// DefaultSchedulerConfigs returns the configuration of schedulers
// created for stages which were not given one.
func DefaultSchedulerConfigs() (fetch, decode, process, encode scheduler.Config) {
	fetch = scheduler.DefaultConfig("fetch")
	decode = scheduler.DefaultConfig("decode")
	decode.MaxConcurrentOperations = 1
	process = scheduler.DefaultConfig("process")
	process.MaxConcurrentOperations = 2
	encode = scheduler.DefaultConfig("encode")
	encode.MaxConcurrentOperations = 1
	return
}

type ProgressFunc func(completed, total int64)

// Pipeline loads images through the memory cache, the disk cache and
// finally the data loader. Identical loads in flight share one
// execution chain.
type Pipeline struct {
	config Config
	hub    hub.TaskHub
	log    *logrus.Entry

	fetch   *scheduler.Scheduler
	decode  *scheduler.Scheduler
	process *scheduler.Scheduler
	encode  *scheduler.Scheduler

	lock   sync.RWMutex
	closed bool
}

func New(config Config) *Pipeline {
	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	if config.Codec == nil {
		config.Codec = decoder.NewImagingCodec(decoder.DefaultImagingCodecConfig())
	}

	if config.Loader == nil {
		config.Loader = fetcher.NewHTTPLoader(fetcher.DefaultHTTPLoaderConfig())
	}

	if config.Cache == nil {
		config.Cache = cache.NewCacheService(cache.Config{Codec: config.Codec, Logger: log})
	}

	fetchConfig, decodeConfig, processConfig, encodeConfig := DefaultSchedulerConfigs()

	return &Pipeline{
		config:  config,
		hub:     hub.NewTaskHub(log),
		log:     log,
		fetch:   retainOrCreate(config.FetchScheduler, fetchConfig, log),
		decode:  retainOrCreate(config.DecodeScheduler, decodeConfig, log),
		process: retainOrCreate(config.ProcessScheduler, processConfig, log),
		encode:  retainOrCreate(config.EncodeScheduler, encodeConfig, log),
	}
}

func retainOrCreate(s *scheduler.Scheduler, config scheduler.Config, log *logrus.Entry) *scheduler.Scheduler {
	if s != nil {
		return s.Retain()
	}

	config.Logger = log
	return scheduler.New(config)
}

func (p *Pipeline) Cache() cache.CacheService {
	return p.config.Cache
}

// CachedImage looks the request up in the memory cache only.
func (p *Pipeline) CachedImage(r request.Request) (decoder.ImageContainer, bool) {
	return p.config.Cache.CachedImage(context.Background(), r, cache.TierMemory)
}

// LoadImage starts loading the image. A memory cache hit is delivered
// before LoadImage returns, anything else is resolved asynchronously.
func (p *Pipeline) LoadImage(r request.Request, onProgress ProgressFunc) *ImageTask {
	task := newImageTask(r)

	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.closed {
		task.complete(Result{Request: r, Err: ErrPipelineClosed})
		return task
	}

	if container, ok := p.CachedImage(r); ok {
		task.complete(Result{Container: container, Request: r, CacheType: CacheTypeMemory})
		return task
	}

	key := cachekey.ForWork(r).String()
	if !p.config.IsDeduplicationEnabled {
		key += "|" + task.ID
	}

	var progress hub.ProgressFunc
	if onProgress != nil {
		progress = func(update hub.Progress) { onProgress(update.Completed, update.Total) }
	}

	sub, created := p.hub.Subscribe(key, r.Priority, progress, func(unit *hub.WorkUnit) {
		p.startLoading(unit, r)
	})

	if created {
		p.log.WithFields(logrus.Fields{"url": r.URL, "task": task.ID}).Debug("loading image")
	}

	task.attach(sub)
	return task
}

// Close cancels every load in flight and releases the schedulers.
// Shared schedulers keep running for their other owners.
func (p *Pipeline) Close() {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return
	}
	p.closed = true
	p.lock.Unlock()

	p.hub.CancelAll(ErrPipelineClosed)

	p.fetch.Release()
	p.decode.Release()
	p.process.Release()
	p.encode.Release()
}

// InFlight returns the number of distinct loads being executed.
func (p *Pipeline) InFlight() int {
	return p.hub.Len()
}

func (p *Pipeline) startLoading(unit *hub.WorkUnit, r request.Request) {
	if r.CanReadDisk() && p.config.Cache.Disk() != nil {
		p.submit(unit, p.decode, r, func(ctx context.Context) {
			p.lookupDisk(ctx, unit, r)
		})
		return
	}

	p.startFetching(unit, r)
}

// submit schedules the next stage of the unit. The stage body runs
// only while the unit is alive and must not block past its context.
func (p *Pipeline) submit(unit *hub.WorkUnit, s *scheduler.Scheduler, r request.Request, stage func(ctx context.Context)) {
	op, ok := unit.Submit(s, func(ctx context.Context, finish scheduler.FinishFunc) {
		defer finish()

		if abandoned(ctx, unit) {
			return
		}

		stage(ctx)
	})

	if ok && op.State() == scheduler.StateCancelled {
		unit.Finish(nil, stageError(scheduler.ErrSchedulerClosed, CodeCancelled, stageCache, r.URL))
	}
}

func (p *Pipeline) lookupDisk(ctx context.Context, unit *hub.WorkUnit, r request.Request) {
	if container, ok := p.config.Cache.CachedImage(ctx, r, cache.TierDisk); ok {
		if abandoned(ctx, unit) {
			return
		}

		p.config.Cache.StoreCachedImage(ctx, container, r, cache.TierMemory)
		unit.Finish(Result{Container: container, Request: r, CacheType: CacheTypeDisk}, nil)
		return
	}

	if len(r.Processors) > 0 {
		if data, ok := p.config.Cache.CachedData(ctx, originalRequest(r)); ok {
			p.decodeData(ctx, unit, r, data)
			return
		}
	}

	p.startFetching(unit, r)
}

func (p *Pipeline) startFetching(unit *hub.WorkUnit, r request.Request) {
	if !r.CanLoad() {
		unit.Finish(nil, stageError(ErrDataMissingInCache, CodeDataMissingInCache, stageCache, r.URL))
		return
	}

	p.submit(unit, p.fetch, r, func(ctx context.Context) {
		data, err := p.config.Loader.Fetch(ctx, r.URL, unit.Progress)
		if err != nil {
			p.fail(ctx, unit, r, err, CodeDataLoadingFailed, stageFetch)
			return
		}

		if abandoned(ctx, unit) {
			return
		}

		if p.storesOriginalData() {
			p.config.Cache.StoreCachedData(ctx, data, originalRequest(r))
		}

		p.submit(unit, p.decode, r, func(ctx context.Context) {
			p.decodeData(ctx, unit, r, data)
		})
	})
}

func (p *Pipeline) decodeData(ctx context.Context, unit *hub.WorkUnit, r request.Request, data []byte) {
	container, err := p.config.Codec.Decode(ctx, data, decoder.DecodeOptions{MaxPixelSize: r.Options.MaxPixelSize})
	if err != nil {
		p.fail(ctx, unit, r, err, CodeDecodingFailed, stageDecode)
		return
	}

	if len(r.Processors) == 0 {
		p.complete(ctx, unit, r, container)
		return
	}

	p.submit(unit, p.process, r, func(ctx context.Context) {
		processed, err := processor.Apply(ctx, r.Processors, container.Image)
		if err != nil {
			p.fail(ctx, unit, r, err, CodeProcessingFailed, stageProcess)
			return
		}

		p.complete(ctx, unit, r, decoder.ImageContainer{Image: processed, Format: container.Format})
	})
}

// complete writes the result to the memory cache before delivering it,
// so the next load of the same request hits the cache. Nothing is
// stored once the unit was abandoned.
func (p *Pipeline) complete(ctx context.Context, unit *hub.WorkUnit, r request.Request, container decoder.ImageContainer) {
	if abandoned(ctx, unit) {
		return
	}

	p.config.Cache.StoreCachedImage(ctx, container, r, cache.TierMemory)
	unit.Finish(Result{Container: container, Request: r}, nil)

	if p.storesEncodedImage(r) {
		p.encode.Submit(func(ctx context.Context, finish scheduler.FinishFunc) {
			defer finish()
			p.config.Cache.StoreCachedImage(ctx, container, r, cache.TierDisk)
		}, scheduler.PriorityLow)
	}
}

func (p *Pipeline) fail(ctx context.Context, unit *hub.WorkUnit, r request.Request, err error, code errors.ErrorCode, stage string) {
	if abandoned(ctx, unit) {
		return
	}

	p.log.WithError(err).WithFields(logrus.Fields{"url": r.URL, "stage": stage}).Debug("image loading failed")
	unit.Finish(nil, stageError(err, code, stage, r.URL))
}

// abandoned finishes the unit as cancelled when its stage context is
// done. Stages returning after a cancellation must not touch the cache.
func abandoned(ctx context.Context, unit *hub.WorkUnit) bool {
	if ctx.Err() == nil {
		return false
	}

	unit.Finish(nil, ErrCancelled)
	return true
}

func (p *Pipeline) storesOriginalData() bool {
	return p.config.DiskCachePolicy == DiskCachePolicyStoreOriginalData ||
		p.config.DiskCachePolicy == DiskCachePolicyStoreAll
}

// storesEncodedImage reports whether the delivered image should be
// encoded to the disk tier. Unprocessed images share the key of the
// original data, which is never overwritten with a re-encoding.
func (p *Pipeline) storesEncodedImage(r request.Request) bool {
	switch p.config.DiskCachePolicy {
	case DiskCachePolicyStoreEncodedImages:
		return true
	case DiskCachePolicyStoreAll:
		return len(r.Processors) > 0
	default:
		return false
	}
}

func originalRequest(r request.Request) request.Request {
	r.Processors = nil
	return r
}

func newTaskID() string {
	return uuid.New().String()
}
