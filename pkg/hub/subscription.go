package hub

import (
	"sync"

	"github.com/thebartekbanach/imgpipe/pkg/scheduler"
)

// Subscription is one caller's attachment to a work unit.
// The result channel receives at most one value and only when the
// subscription was still attached when the unit finished.
type Subscription struct {
	id         uint64
	priority   scheduler.Priority
	onProgress ProgressFunc
	result     chan Result

	unit     *WorkUnit
	detached bool

	deliverOnce sync.Once
}

func newSubscription(id uint64, priority scheduler.Priority, onProgress ProgressFunc) *Subscription {
	return &Subscription{
		id:         id,
		priority:   priority,
		onProgress: onProgress,
		result:     make(chan Result, 1),
	}
}

func (sub *Subscription) Result() <-chan Result {
	return sub.result
}

func (sub *Subscription) Key() string {
	return sub.unit.key
}

func (sub *Subscription) Unsubscribe() {
	sub.unit.hub.Unsubscribe(sub)
}

func (sub *Subscription) SetPriority(priority scheduler.Priority) {
	sub.unit.hub.SetPriority(sub, priority)
}

func (sub *Subscription) deliver(result Result) {
	sub.deliverOnce.Do(func() {
		sub.result <- result
	})
}
