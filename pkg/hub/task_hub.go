package hub

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/scheduler"
)

type taskHub struct {
	lock   sync.Mutex
	units  map[string]*WorkUnit
	nextID uint64
	log    *logrus.Entry
}

var _ TaskHub = (*taskHub)(nil)

func NewTaskHub(log *logrus.Entry) TaskHub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &taskHub{
		units: make(map[string]*WorkUnit),
		log:   log,
	}
}

func (hub *taskHub) Subscribe(key string, priority scheduler.Priority, onProgress ProgressFunc, start StartFunc) (*Subscription, bool) {
	hub.lock.Lock()

	hub.nextID++
	sub := newSubscription(hub.nextID, priority, onProgress)

	if unit, exists := hub.units[key]; exists {
		unit.attach(sub)
		hub.lock.Unlock()

		hub.log.WithField("key", key).Debug("joined existing work unit")
		return sub, false
	}

	unit := newWorkUnit(hub, key)
	unit.attach(sub)
	hub.units[key] = unit
	hub.lock.Unlock()

	start(unit)
	return sub, true
}

func (hub *taskHub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	hub.lock.Lock()

	unit := sub.unit
	if sub.detached || unit == nil || unit.finished {
		hub.lock.Unlock()
		return
	}

	unit.detach(sub)
	if len(unit.subscribers) > 0 {
		unit.updatePriority()
		hub.lock.Unlock()
		return
	}

	operations := hub.retire(unit)
	hub.lock.Unlock()

	for _, op := range operations {
		op.Cancel()
	}

	hub.log.WithField("key", unit.key).Debug("last subscriber left, work unit cancelled")
}

func (hub *taskHub) SetPriority(sub *Subscription, priority scheduler.Priority) {
	if sub == nil {
		return
	}

	hub.lock.Lock()
	defer hub.lock.Unlock()

	if sub.detached || sub.unit == nil || sub.unit.finished {
		sub.priority = priority
		return
	}

	sub.priority = priority
	sub.unit.updatePriority()
}

// CancelAll terminates every live work unit. Subscribers still
// attached receive a failure wrapping ErrWorkUnitCancelled.
func (hub *taskHub) CancelAll(cause error) {
	hub.lock.Lock()
	units := make([]*WorkUnit, 0, len(hub.units))
	for _, unit := range hub.units {
		units = append(units, unit)
	}
	hub.lock.Unlock()

	err := ErrWorkUnitCancelled
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrWorkUnitCancelled, cause)
	}

	for _, unit := range units {
		unit.Finish(nil, err)
	}
}

func (hub *taskHub) Len() int {
	hub.lock.Lock()
	defer hub.lock.Unlock()

	return len(hub.units)
}

func (hub *taskHub) Has(key string) bool {
	hub.lock.Lock()
	defer hub.lock.Unlock()

	_, exists := hub.units[key]
	return exists
}

// retire marks the unit finished and removes it from the registry,
// returning the operations which still have to be cancelled.
// Must be called with the lock held.
func (hub *taskHub) retire(unit *WorkUnit) []*scheduler.Operation {
	unit.finished = true
	if hub.units[unit.key] == unit {
		delete(hub.units, unit.key)
	}

	unit.cancel()

	operations := unit.operations
	unit.operations = nil
	return operations
}
