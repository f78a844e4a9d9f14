package hub

import (
	"context"

	"github.com/thebartekbanach/imgpipe/pkg/scheduler"
)

// WorkUnit is one deduplicated execution chain shared by every
// subscriber of the same key. All mutable fields are guarded by the
// hub lock.
type WorkUnit struct {
	hub *taskHub
	key string

	ctx    context.Context
	cancel context.CancelFunc

	subscribers map[uint64]*Subscription
	priority    scheduler.Priority
	operations  []*scheduler.Operation
	finished    bool
}

func newWorkUnit(hub *taskHub, key string) *WorkUnit {
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkUnit{
		hub:         hub,
		key:         key,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[uint64]*Subscription),
		priority:    scheduler.PriorityVeryLow,
	}
}

func (unit *WorkUnit) Key() string {
	return unit.key
}

// Context is cancelled once the unit is finished or abandoned
// by its last subscriber.
func (unit *WorkUnit) Context() context.Context {
	return unit.ctx
}

func (unit *WorkUnit) Priority() scheduler.Priority {
	unit.hub.lock.Lock()
	defer unit.hub.lock.Unlock()

	return unit.priority
}

func (unit *WorkUnit) SubscriberCount() int {
	unit.hub.lock.Lock()
	defer unit.hub.lock.Unlock()

	return len(unit.subscribers)
}

// Submit schedules the next stage of the chain with the current
// aggregate priority. Later priority changes of the unit are
// propagated to the returned operation. Returns false, without
// submitting anything, when the unit is already finished.
func (unit *WorkUnit) Submit(s *scheduler.Scheduler, work scheduler.Work) (*scheduler.Operation, bool) {
	unit.hub.lock.Lock()
	defer unit.hub.lock.Unlock()

	if unit.finished {
		return nil, false
	}

	live := unit.operations[:0]
	for _, op := range unit.operations {
		select {
		case <-op.Done():
		default:
			live = append(live, op)
		}
	}

	op := s.Submit(work, unit.priority)
	unit.operations = append(live, op)
	return op, true
}

// Progress forwards progress to every attached subscriber
// which registered a progress callback.
func (unit *WorkUnit) Progress(completed, total int64) {
	unit.hub.lock.Lock()
	if unit.finished {
		unit.hub.lock.Unlock()
		return
	}

	callbacks := make([]ProgressFunc, 0, len(unit.subscribers))
	for _, sub := range unit.subscribers {
		if sub.onProgress != nil {
			callbacks = append(callbacks, sub.onProgress)
		}
	}
	unit.hub.lock.Unlock()

	progress := Progress{completed, total}
	for _, callback := range callbacks {
		callback(progress)
	}
}

// Finish broadcasts the terminal result to every attached subscriber
// and removes the unit from the hub. Only the first call has effect,
// and none at all once the last subscriber has left.
func (unit *WorkUnit) Finish(value interface{}, err error) {
	unit.hub.lock.Lock()
	if unit.finished {
		unit.hub.lock.Unlock()
		return
	}

	subscribers := make([]*Subscription, 0, len(unit.subscribers))
	for _, sub := range unit.subscribers {
		sub.detached = true
		subscribers = append(subscribers, sub)
	}
	unit.subscribers = make(map[uint64]*Subscription)

	operations := unit.hub.retire(unit)
	unit.hub.lock.Unlock()

	for _, op := range operations {
		op.Cancel()
	}

	result := Result{value, err}
	for _, sub := range subscribers {
		sub.deliver(result)
	}
}

// attach must be called with the hub lock held.
func (unit *WorkUnit) attach(sub *Subscription) {
	sub.unit = unit
	unit.subscribers[sub.id] = sub
	unit.updatePriority()
}

// detach must be called with the hub lock held.
func (unit *WorkUnit) detach(sub *Subscription) {
	sub.detached = true
	delete(unit.subscribers, sub.id)
}

// updatePriority recomputes the aggregate priority and propagates
// a change to every scheduled operation. Must be called with the
// hub lock held.
func (unit *WorkUnit) updatePriority() {
	priority := scheduler.PriorityVeryLow
	for _, sub := range unit.subscribers {
		priority = scheduler.MaxPriority(priority, sub.priority)
	}

	if priority == unit.priority {
		return
	}

	unit.priority = priority
	for _, op := range unit.operations {
		op.SetPriority(priority)
	}
}
