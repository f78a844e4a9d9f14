package scheduler

import (
	"context"
	"sync"
)

type State int

const (
	StatePending State = iota
	StateExecuting
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExecuting:
		return "executing"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FinishFunc reports completion of a work body.
// Only the first call has any effect.
type FinishFunc func()

// Work is the body of an operation. The context is cancelled when
// the operation gets cancelled, the body is expected to check it at
// its safe points and call finish exactly once when it is done.
type Work func(ctx context.Context, finish FinishFunc)

// Operation is a handle to a piece of work submitted to the Scheduler.
// All mutable fields are guarded by the owning scheduler lock.
type Operation struct {
	scheduler *Scheduler
	work      Work

	seq      uint64
	priority Priority
	state    State
	index    int  // position in the queue, -1 when not queued
	holdSlot bool // counted in scheduler.executing

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	finishOnce sync.Once
}

func newOperation(scheduler *Scheduler, seq uint64, work Work, priority Priority) *Operation {
	ctx, cancel := context.WithCancel(context.Background())

	return &Operation{
		scheduler: scheduler,
		work:      work,
		seq:       seq,
		priority:  priority,
		state:     StatePending,
		index:     -1,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (op *Operation) State() State {
	op.scheduler.lock.Lock()
	defer op.scheduler.lock.Unlock()

	return op.state
}

func (op *Operation) Priority() Priority {
	op.scheduler.lock.Lock()
	defer op.scheduler.lock.Unlock()

	return op.priority
}

// Done is closed once the operation reaches a terminal state,
// either finished or cancelled.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

func (op *Operation) Cancel() {
	op.scheduler.Cancel(op)
}

func (op *Operation) SetPriority(priority Priority) {
	op.scheduler.SetPriority(op, priority)
}

func (op *Operation) finish() {
	op.finishOnce.Do(func() {
		op.scheduler.finish(op)
	})
}

// terminate must be called with the scheduler lock held.
func (op *Operation) terminate(state State) {
	op.state = state
	op.cancel()
	close(op.done)
}
