package hub

import (
	"errors"

	"github.com/thebartekbanach/imgpipe/pkg/scheduler"
)

type (
	// Result is the terminal outcome of a work unit, delivered to
	// every subscriber that is still attached when the unit finishes.
	Result struct {
		Value interface{}
		Err   error
	}

	Progress struct {
		Completed int64
		Total     int64
	}

	ProgressFunc func(Progress)

	// StartFunc starts the execution chain of a freshly created work unit.
	// It is called once per unit, outside of the hub lock, and must not block.
	StartFunc func(unit *WorkUnit)

	TaskHub interface {
		Subscribe(key string, priority scheduler.Priority, onProgress ProgressFunc, start StartFunc) (sub *Subscription, created bool)
		Unsubscribe(sub *Subscription)
		SetPriority(sub *Subscription, priority scheduler.Priority)
		CancelAll(cause error)
		Len() int
		Has(key string) bool
	}
)

var (
	ErrWorkUnitCancelled = errors.New("work unit cancelled")
)
