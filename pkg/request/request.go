package request

import (
	"github.com/thebartekbanach/imgpipe/pkg/processor"
	"github.com/thebartekbanach/imgpipe/pkg/scheduler"
)

type Priority = scheduler.Priority

const (
	PriorityVeryLow  = scheduler.PriorityVeryLow
	PriorityLow      = scheduler.PriorityLow
	PriorityNormal   = scheduler.PriorityNormal
	PriorityHigh     = scheduler.PriorityHigh
	PriorityVeryHigh = scheduler.PriorityVeryHigh
)

type CachePolicy int

const (
	// CachePolicyDefault reads and writes every permitted tier.
	CachePolicyDefault CachePolicy = iota

	// CachePolicyReloadIgnoringCachedData never reads from the cache,
	// fresh results are still written back.
	CachePolicyReloadIgnoringCachedData

	// CachePolicyReturnCacheDataDontLoad only reads from the cache,
	// a miss fails instead of loading the data.
	CachePolicyReturnCacheDataDontLoad
)

type TierOptions struct {
	ReadAllowed  bool
	WriteAllowed bool
}

type Options struct {
	Memory      TierOptions
	Disk        TierOptions
	CachePolicy CachePolicy

	// MaxPixelSize downsamples decoded images so that neither dimension
	// exceeds it. Zero keeps the original size.
	MaxPixelSize int
}

// Request describes a single image to load. It is treated as immutable
// once submitted, the priority of an in-flight load is changed through
// the task handle.
type Request struct {
	URL string

	// ImageID replaces URL in cache keys when set, so images behind
	// expiring or signed URLs share cache entries.
	ImageID string

	Processors []processor.Processor
	Priority   Priority
	Options    Options
}

func DefaultOptions() Options {
	return Options{
		Memory:      TierOptions{ReadAllowed: true, WriteAllowed: true},
		Disk:        TierOptions{ReadAllowed: true, WriteAllowed: true},
		CachePolicy: CachePolicyDefault,
	}
}

func New(url string, processors ...processor.Processor) Request {
	return Request{
		URL:        url,
		Processors: processors,
		Priority:   PriorityNormal,
		Options:    DefaultOptions(),
	}
}

// Identity is the resource identity used by every cache key.
func (r Request) Identity() string {
	if r.ImageID != "" {
		return r.ImageID
	}

	return r.URL
}

func (r Request) WithPriority(priority Priority) Request {
	r.Priority = priority
	return r
}

func (r Request) WithPolicy(policy CachePolicy) Request {
	r.Options.CachePolicy = policy
	return r
}

func (r Request) WithImageID(id string) Request {
	r.ImageID = id
	return r
}

// CanReadMemory reports whether the memory tier may be consulted.
func (r Request) CanReadMemory() bool {
	return r.Options.Memory.ReadAllowed && r.Options.CachePolicy != CachePolicyReloadIgnoringCachedData
}

func (r Request) CanReadDisk() bool {
	return r.Options.Disk.ReadAllowed && r.Options.CachePolicy != CachePolicyReloadIgnoringCachedData
}

func (r Request) CanWriteMemory() bool {
	return r.Options.Memory.WriteAllowed
}

func (r Request) CanWriteDisk() bool {
	return r.Options.Disk.WriteAllowed
}

func (r Request) CanLoad() bool {
	return r.Options.CachePolicy != CachePolicyReturnCacheDataDontLoad
}
