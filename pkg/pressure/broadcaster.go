package pressure

import (
	"context"
	"errors"
)

type Level int

const (
	// LevelWarning asks listeners to release what they can cheaply rebuild.
	LevelWarning Level = iota
	// LevelCritical asks listeners to release everything they hold.
	LevelCritical
)

func (l Level) String() string {
	if l == LevelCritical {
		return "critical"
	}

	return "warning"
}

type Listener func(level Level)

// Signal is the capability memory holders subscribe to.
type Signal interface {
	Subscribe(listener Listener) (unsubscribe func())
}

type subscribeRequest struct {
	listener Listener
	response chan uint64
}

type notifyRequest struct {
	level    Level
	response chan error
}

// Broadcaster is a Signal driven by explicit Notify calls. Its state
// is owned by the monitor goroutine started with StartMonitor.
type Broadcaster struct {
	listeners map[uint64]Listener
	nextID    uint64

	subscribe   chan subscribeRequest
	unsubscribe chan uint64
	notify      chan notifyRequest
	stopped     chan struct{}
}

var _ Signal = (*Broadcaster)(nil)

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		listeners:   make(map[uint64]Listener),
		subscribe:   make(chan subscribeRequest),
		unsubscribe: make(chan uint64),
		notify:      make(chan notifyRequest),
		stopped:     make(chan struct{}),
	}
}

func (b *Broadcaster) Subscribe(listener Listener) func() {
	request := subscribeRequest{listener, make(chan uint64, 1)}

	select {
	case b.subscribe <- request:
	case <-b.stopped:
		return func() {}
	}

	id := <-request.response
	return func() {
		select {
		case b.unsubscribe <- id:
		case <-b.stopped:
		}
	}
}

// Notify delivers the level to every listener. The returned channel
// receives nil once all listeners returned, or ErrBroadcasterStopped.
func (b *Broadcaster) Notify(level Level) <-chan error {
	request := notifyRequest{level, make(chan error, 1)}

	select {
	case b.notify <- request:
	case <-b.stopped:
		request.response <- ErrBroadcasterStopped
		close(request.response)
	}

	return request.response
}

func (b *Broadcaster) StartMonitor(ctx context.Context) {
	defer close(b.stopped)

	for {
		select {
		case <-ctx.Done():
			b.listeners = make(map[uint64]Listener)
			return

		case request := <-b.subscribe:
			b.nextID++
			b.listeners[b.nextID] = request.listener
			request.response <- b.nextID
			close(request.response)

		case id := <-b.unsubscribe:
			delete(b.listeners, id)

		case request := <-b.notify:
			listeners := make([]Listener, 0, len(b.listeners))
			for _, listener := range b.listeners {
				listeners = append(listeners, listener)
			}

			// listeners run outside of the monitor so they are free
			// to unsubscribe from within the callback
			go func(level Level, response chan error) {
				for _, listener := range listeners {
					listener(level)
				}

				response <- nil
				close(response)
			}(request.level, request.response)
		}
	}
}

var (
	ErrBroadcasterStopped = errors.New("pressure broadcaster stopped")
)
