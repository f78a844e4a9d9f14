package pipeline

import (
	"context"
	"sync"

	"github.com/jmgilman/go/errors"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/hub"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

type CacheType int

const (
	CacheTypeNone CacheType = iota
	CacheTypeMemory
	CacheTypeDisk
)

func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeDisk:
		return "disk"
	default:
		return "none"
	}
}

type Result struct {
	Container decoder.ImageContainer
	Request   request.Request
	CacheType CacheType
	Err       error
}

// ImageTask is the caller's handle to a single LoadImage call.
// Cancelling it detaches the caller without affecting other callers
// waiting for the same image.
type ImageTask struct {
	ID      string
	Request request.Request

	result    chan Result
	cancelled chan struct{}

	lock       sync.Mutex
	sub        *hub.Subscription
	priority   request.Priority
	cancelOnce sync.Once
}

func newImageTask(r request.Request) *ImageTask {
	return &ImageTask{
		ID:        newTaskID(),
		Request:   r,
		result:    make(chan Result, 1),
		cancelled: make(chan struct{}),
		priority:  r.Priority,
	}
}

// Result receives exactly one value unless the task is cancelled first,
// a cancelled task receives nothing.
func (t *ImageTask) Result() <-chan Result {
	return t.result
}

// Wait blocks until the task completes. Cancelling ctx cancels the
// task and returns ErrCancelled.
func (t *ImageTask) Wait(ctx context.Context) (Result, error) {
	select {
	case result := <-t.result:
		return result, result.Err
	case <-t.cancelled:
		return Result{Request: t.Request}, ErrCancelled
	case <-ctx.Done():
		t.Cancel()
		return Result{Request: t.Request}, ErrCancelled
	}
}

func (t *ImageTask) Cancel() {
	t.cancelOnce.Do(func() {
		close(t.cancelled)

		t.lock.Lock()
		sub := t.sub
		t.lock.Unlock()

		if sub != nil {
			sub.Unsubscribe()
		}
	})
}

func (t *ImageTask) SetPriority(priority request.Priority) {
	t.lock.Lock()
	t.priority = priority
	sub := t.sub
	t.lock.Unlock()

	if sub != nil {
		sub.SetPriority(priority)
	}
}

func (t *ImageTask) Priority() request.Priority {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.priority
}

func (t *ImageTask) complete(result Result) {
	t.result <- result
}

func (t *ImageTask) attach(sub *hub.Subscription) {
	t.lock.Lock()
	t.sub = sub
	t.lock.Unlock()

	go t.forward(sub)
}

func (t *ImageTask) forward(sub *hub.Subscription) {
	select {
	case <-t.cancelled:
	case outcome := <-sub.Result():
		t.complete(t.toResult(outcome))
	}
}

func (t *ImageTask) toResult(outcome hub.Result) Result {
	if outcome.Err != nil {
		err := outcome.Err
		if errors.Is(err, hub.ErrWorkUnitCancelled) {
			err = errors.Wrap(err, CodeCancelled, ErrCancelled.Message())
		}

		return Result{Request: t.Request, Err: err}
	}

	result, _ := outcome.Value.(Result)
	result.Request = t.Request
	return result
}
