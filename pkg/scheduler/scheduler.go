package scheduler

import (
	"container/heap"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Name                    string
	MaxConcurrentOperations int
	Logger                  *logrus.Entry
}

func DefaultConfig(name string) Config {
	return Config{
		Name:                    name,
		MaxConcurrentOperations: 6,
	}
}

// Scheduler executes submitted operations with bounded concurrency.
// Queued operations are started in priority order, operations already
// executing are never preempted.
//
// A scheduler is reference counted so it can be shared between
// several pipelines: New returns it with one reference, every
// additional owner calls Retain and every owner calls Release once.
// When the last reference is released all queued and executing
// operations are cancelled and further submissions are rejected.
type Scheduler struct {
	config Config
	log    *logrus.Entry

	lock      sync.Mutex
	queue     operationQueue
	executing int
	seq       uint64
	refs      int
	closed    bool
	running   map[*Operation]struct{}
}

func New(config Config) *Scheduler {
	if config.MaxConcurrentOperations < 1 {
		config.MaxConcurrentOperations = 1
	}

	log := config.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Scheduler{
		config:  config,
		log:     log.WithField("scheduler", config.Name),
		queue:   make(operationQueue, 0),
		refs:    1,
		running: make(map[*Operation]struct{}),
	}
}

// Submit enqueues the work and returns immediately. On a closed
// scheduler the returned operation is already cancelled.
func (s *Scheduler) Submit(work Work, priority Priority) *Operation {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.seq++
	op := newOperation(s, s.seq, work, priority)

	if s.closed {
		op.terminate(StateCancelled)
		return op
	}

	heap.Push(&s.queue, op)
	s.admit()
	return op
}

func (s *Scheduler) Cancel(op *Operation) {
	if op == nil {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.cancel(op)
}

func (s *Scheduler) SetPriority(op *Operation, priority Priority) {
	if op == nil {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if op.priority == priority {
		return
	}

	op.priority = priority
	if op.state == StatePending && op.index >= 0 {
		heap.Fix(&s.queue, op.index)
	}
}

func (s *Scheduler) Retain() *Scheduler {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		s.log.Warn("retaining already closed scheduler")
		return s
	}

	s.refs++
	return s
}

func (s *Scheduler) Release() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}

	s.refs--
	if s.refs > 0 {
		return
	}

	s.closed = true
	for s.queue.Len() > 0 {
		op := heap.Pop(&s.queue).(*Operation)
		op.terminate(StateCancelled)
	}

	for op := range s.running {
		if op.state == StateExecuting {
			op.terminate(StateCancelled)
		}
	}

	s.log.Debug("scheduler closed")
}

func (s *Scheduler) QueuedCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.queue.Len()
}

func (s *Scheduler) ExecutingCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.executing
}

func (s *Scheduler) MaxConcurrentOperations() int {
	return s.config.MaxConcurrentOperations
}

// cancel must be called with the lock held.
func (s *Scheduler) cancel(op *Operation) {
	switch op.state {
	case StatePending:
		if op.index >= 0 {
			heap.Remove(&s.queue, op.index)
		}
		op.terminate(StateCancelled)

	case StateExecuting:
		// the slot stays taken until the body calls finish
		op.terminate(StateCancelled)
	}
}

func (s *Scheduler) finish(op *Operation) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if op.state == StateExecuting {
		op.terminate(StateFinished)
	}

	if op.holdSlot {
		op.holdSlot = false
		s.executing--
		delete(s.running, op)
	}

	s.admit()
}

// admit must be called with the lock held.
func (s *Scheduler) admit() {
	for !s.closed && s.executing < s.config.MaxConcurrentOperations && s.queue.Len() > 0 {
		op := heap.Pop(&s.queue).(*Operation)
		op.state = StateExecuting
		op.holdSlot = true
		s.executing++
		s.running[op] = struct{}{}

		go op.work(op.ctx, op.finish)
	}
}

var ErrSchedulerClosed = errors.New("scheduler closed")
