package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/franela/goblin"
)

func waitClosed(ch <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// blockingWork returns a work body that waits for release to be closed
// (or for cancellation) before finishing.
func blockingWork(started chan<- struct{}, release <-chan struct{}) Work {
	return func(ctx context.Context, finish FinishFunc) {
		if started != nil {
			started <- struct{}{}
		}

		select {
		case <-release:
		case <-ctx.Done():
		}

		finish()
	}
}

func recordingWork(lock *sync.Mutex, order *[]string, name string) Work {
	return func(ctx context.Context, finish FinishFunc) {
		lock.Lock()
		*order = append(*order, name)
		lock.Unlock()
		finish()
	}
}

func TestScheduler(t *testing.T) {
	g := Goblin(t)

	g.Describe("Scheduler", func() {
		g.It("Should execute submitted work and mark it finished", func() {
			s := New(DefaultConfig("test"))
			defer s.Release()

			executed := int32(0)
			op := s.Submit(func(ctx context.Context, finish FinishFunc) {
				atomic.AddInt32(&executed, 1)
				finish()
			}, PriorityNormal)

			g.Assert(waitClosed(op.Done(), time.Second)).IsTrue()
			g.Assert(op.State()).Equal(StateFinished)
			g.Assert(atomic.LoadInt32(&executed)).Equal(int32(1))
		})

		g.It("Should never execute more operations than configured", func() {
			s := New(Config{Name: "bounded", MaxConcurrentOperations: 2})
			defer s.Release()

			current, peak := int32(0), int32(0)
			ops := make([]*Operation, 0)
			for i := 0; i < 20; i++ {
				ops = append(ops, s.Submit(func(ctx context.Context, finish FinishFunc) {
					now := atomic.AddInt32(&current, 1)
					for {
						old := atomic.LoadInt32(&peak)
						if now <= old || atomic.CompareAndSwapInt32(&peak, old, now) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					atomic.AddInt32(&current, -1)
					finish()
				}, PriorityNormal))
			}

			for _, op := range ops {
				g.Assert(waitClosed(op.Done(), 2*time.Second)).IsTrue()
			}
			g.Assert(atomic.LoadInt32(&peak) <= 2).IsTrue("concurrency bound exceeded")
		})

		g.It("Should start queued operations by priority, FIFO within a priority", func() {
			s := New(Config{Name: "ordered", MaxConcurrentOperations: 1})
			defer s.Release()

			started, release := make(chan struct{}, 1), make(chan struct{})
			blocker := s.Submit(blockingWork(started, release), PriorityNormal)
			<-started

			lock, order := sync.Mutex{}, []string{}
			low := s.Submit(recordingWork(&lock, &order, "low"), PriorityLow)
			normal1 := s.Submit(recordingWork(&lock, &order, "normal-1"), PriorityNormal)
			high := s.Submit(recordingWork(&lock, &order, "high"), PriorityHigh)
			normal2 := s.Submit(recordingWork(&lock, &order, "normal-2"), PriorityNormal)

			g.Assert(s.QueuedCount()).Equal(4)
			close(release)

			for _, op := range []*Operation{blocker, low, normal1, high, normal2} {
				g.Assert(waitClosed(op.Done(), time.Second)).IsTrue()
			}

			g.Assert(order).Equal([]string{"high", "normal-1", "normal-2", "low"})
		})

		g.It("Should re-sort queued operation when its priority changes", func() {
			s := New(Config{Name: "resort", MaxConcurrentOperations: 1})
			defer s.Release()

			started, release := make(chan struct{}, 1), make(chan struct{})
			s.Submit(blockingWork(started, release), PriorityNormal)
			<-started

			lock, order := sync.Mutex{}, []string{}
			first := s.Submit(recordingWork(&lock, &order, "first"), PriorityNormal)
			second := s.Submit(recordingWork(&lock, &order, "second"), PriorityNormal)
			second.SetPriority(PriorityVeryHigh)
			g.Assert(second.Priority()).Equal(PriorityVeryHigh)

			close(release)
			g.Assert(waitClosed(first.Done(), time.Second)).IsTrue()
			g.Assert(waitClosed(second.Done(), time.Second)).IsTrue()

			g.Assert(order).Equal([]string{"second", "first"})
		})

		g.It("Should not execute cancelled pending operation", func() {
			s := New(Config{Name: "cancel-pending", MaxConcurrentOperations: 1})
			defer s.Release()

			started, release := make(chan struct{}, 1), make(chan struct{})
			s.Submit(blockingWork(started, release), PriorityNormal)
			<-started

			executed := int32(0)
			op := s.Submit(func(ctx context.Context, finish FinishFunc) {
				atomic.AddInt32(&executed, 1)
				finish()
			}, PriorityNormal)

			op.Cancel()
			g.Assert(op.State()).Equal(StateCancelled)
			g.Assert(waitClosed(op.Done(), 0)).IsTrue()
			g.Assert(s.QueuedCount()).Equal(0)

			close(release)
			time.Sleep(20 * time.Millisecond)
			g.Assert(atomic.LoadInt32(&executed)).Equal(int32(0))
		})

		g.It("Should signal cancellation to executing operation and keep its slot until finish", func() {
			s := New(Config{Name: "cancel-executing", MaxConcurrentOperations: 1})
			defer s.Release()

			started := make(chan struct{}, 1)
			observed := make(chan struct{})
			finishNow := make(chan struct{})
			op := s.Submit(func(ctx context.Context, finish FinishFunc) {
				started <- struct{}{}
				<-ctx.Done()
				close(observed)
				<-finishNow
				finish()
			}, PriorityNormal)
			<-started

			next := s.Submit(func(ctx context.Context, finish FinishFunc) { finish() }, PriorityNormal)

			op.Cancel()
			g.Assert(waitClosed(observed, time.Second)).IsTrue()
			g.Assert(op.State()).Equal(StateCancelled)
			g.Assert(s.ExecutingCount()).Equal(1)
			g.Assert(next.State()).Equal(StatePending)

			close(finishNow)
			g.Assert(waitClosed(next.Done(), time.Second)).IsTrue()
			g.Assert(op.State()).Equal(StateCancelled)
		})

		g.It("Should treat double cancellation and cancellation after finish as no-ops", func() {
			s := New(DefaultConfig("noop"))
			defer s.Release()

			op := s.Submit(func(ctx context.Context, finish FinishFunc) {
				finish()
				finish()
			}, PriorityNormal)
			g.Assert(waitClosed(op.Done(), time.Second)).IsTrue()

			op.Cancel()
			op.Cancel()
			g.Assert(op.State()).Equal(StateFinished)

			started, release := make(chan struct{}, 1), make(chan struct{})
			blocked := s.Submit(blockingWork(started, release), PriorityNormal)
			<-started
			blocked.Cancel()
			blocked.Cancel()
			blocked.Cancel()
			g.Assert(blocked.State()).Equal(StateCancelled)
			close(release)
		})

		g.It("Should cancel everything when last reference is released", func() {
			s := New(Config{Name: "shared", MaxConcurrentOperations: 1})
			s.Retain()

			started, release := make(chan struct{}, 1), make(chan struct{})
			defer close(release)
			running := s.Submit(blockingWork(started, release), PriorityNormal)
			<-started
			queued := s.Submit(func(ctx context.Context, finish FinishFunc) { finish() }, PriorityNormal)

			s.Release()
			g.Assert(queued.State()).Equal(StatePending)

			s.Release()
			g.Assert(queued.State()).Equal(StateCancelled)
			g.Assert(waitClosed(running.Done(), time.Second)).IsTrue()
			g.Assert(running.State()).Equal(StateCancelled)

			late := s.Submit(func(ctx context.Context, finish FinishFunc) { finish() }, PriorityNormal)
			g.Assert(late.State()).Equal(StateCancelled)
		})

		g.It("Should reach terminal state for every operation under concurrent cancellations", func() {
			s := New(Config{Name: "stress", MaxConcurrentOperations: 10})
			defer s.Release()

			lock := sync.Mutex{}
			ops := make([]*Operation, 0, 2500)
			wg := sync.WaitGroup{}

			for worker := 0; worker < 5; worker++ {
				wg.Add(1)
				go func(seed int64) {
					defer wg.Done()
					rnd := rand.New(rand.NewSource(seed))

					for i := 0; i < 500; i++ {
						sleep := time.Duration(1+rnd.Intn(3)) * time.Millisecond
						op := s.Submit(func(ctx context.Context, finish FinishFunc) {
							select {
							case <-time.After(sleep):
							case <-ctx.Done():
							}
							finish()
						}, Priority(rnd.Intn(5)))

						if i%3 == 0 {
							delay := time.Duration(rnd.Intn(5)) * time.Millisecond
							go func() {
								time.Sleep(delay)
								op.Cancel()
								op.Cancel()
								op.Cancel()
							}()
						}

						lock.Lock()
						ops = append(ops, op)
						lock.Unlock()
					}
				}(int64(worker))
			}
			wg.Wait()

			for _, op := range ops {
				if !waitClosed(op.Done(), 10*time.Second) {
					g.Fail("operation never reached terminal state")
				}
			}

			g.Assert(s.QueuedCount()).Equal(0)
		})
	})
}
