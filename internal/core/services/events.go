package services

import (
	"sync"

	"github.com/brimr-tools/fundfetch/internal/core/domain"
)

// eventQueue carries status events from the worker to the observer.
// Push never blocks: events are buffered without bound and drained in
// production order by a pump goroutine, so a slow observer can never
// stall the download loop.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []domain.StatusEvent
	closed bool
	out    chan domain.StatusEvent
}

func newEventQueue() *eventQueue {
	q := &eventQueue{out: make(chan domain.StatusEvent)}
	q.cond = sync.NewCond(&q.mu)
	go q.pump()
	return q
}

// Push appends an event. Events pushed after Close are dropped.
func (q *eventQueue) Push(e domain.StatusEvent) {
	q.mu.Lock()
	if !q.closed {
		q.buf = append(q.buf, e)
	}
	q.mu.Unlock()
	q.cond.Signal()
}

// Events returns the observer channel. It is closed once Close has
// been called and all buffered events have been delivered.
func (q *eventQueue) Events() <-chan domain.StatusEvent {
	return q.out
}

// Close stops the queue after draining. Safe to call more than once.
func (q *eventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *eventQueue) pump() {
	for {
		q.mu.Lock()
		for len(q.buf) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.buf) == 0 {
			q.mu.Unlock()
			close(q.out)
			return
		}
		e := q.buf[0]
		q.buf = q.buf[1:]
		q.mu.Unlock()

		q.out <- e
	}
}
