package comm

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// peekToken is the wildcard routing token used by non-consuming reads. It
// matches any mailbox occupant without claiming it.
const peekToken = "__peek__"

// Event is a blocked waiter: a one-shot wait handle tagged with a priority
// and an optional routing token. An empty token accepts any message.
type Event struct {
	priority int
	token    string
	done     chan struct{}
	fired    bool
}

func newEvent(priority int, token string) *Event {
	return &Event{priority: priority, token: token, done: make(chan struct{})}
}

func (e *Event) String() string {
	return fmt.Sprintf("Event(priority=%d, token=%q)", e.priority, e.token)
}

// EventQueue is a priority-ordered collection of blocked waiters. For the
// reader queue, token records which recipient currently owns the mailbox
// contents; it is empty while the mailbox is unclaimed.
//
// All mutation happens under an explicit mutex: queue state is shared between
// every actor goroutine and the medium's tick goroutine.
type EventQueue struct {
	name string

	mu     sync.Mutex
	events []*Event
	token  string
}

// NewEventQueue creates an empty queue. The name only appears in debug logs.
func NewEventQueue(name string) *EventQueue {
	return &EventQueue{name: name}
}

// Len returns the number of blocked waiters.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Token returns the outstanding routing token.
func (q *EventQueue) Token() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.token
}

// SetToken installs the routing token that gates eligibility for the next
// dequeue.
func (q *EventQueue) SetToken(token string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.token = token
}

// Enqueue registers a waiter and blocks the calling goroutine until it is
// dequeued. A timeout of zero blocks indefinitely; on expiry the waiter is
// removed from the queue and ErrTimeout is returned.
func (q *EventQueue) Enqueue(priority int, token string, timeout time.Duration) error {
	event := newEvent(priority, token)
	q.mu.Lock()
	q.events = append(q.events, event)
	q.mu.Unlock()
	slog.Debug("enqueued", "queue", q.name, "event", event)

	if timeout <= 0 {
		<-event.done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-event.done:
		return nil
	case <-timer.C:
		q.mu.Lock()
		defer q.mu.Unlock()
		if event.fired {
			// Dequeued concurrently with the timer firing.
			return nil
		}
		q.remove(event)
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// Dequeue releases the eligible waiter with the highest priority, preserving
// submission order among equals. Eligibility is the three-way token rule: a
// waiter's token must equal the queue's token, be the peek wildcard, or be
// unset. A non-peek release clears the queue token. Reports whether a waiter
// was released.
func (q *EventQueue) Dequeue() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	best := -1
	for i, e := range q.events {
		if e.token != q.token && e.token != peekToken && e.token != "" {
			continue
		}
		if best == -1 || e.priority > q.events[best].priority {
			best = i
		}
	}
	if best == -1 {
		return false
	}

	event := q.events[best]
	if event.token != peekToken {
		q.token = ""
	}
	q.remove(event)
	slog.Debug("dequeued", "queue", q.name, "event", event)
	event.fired = true
	close(event.done)
	return true
}

// DequeueAll releases every waiter regardless of eligibility.
func (q *EventQueue) DequeueAll() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, event := range q.events {
		event.fired = true
		close(event.done)
	}
	q.events = q.events[:0]
}

// remove deletes an event from the slice. Caller holds q.mu.
func (q *EventQueue) remove(event *Event) {
	for i, e := range q.events {
		if e == event {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return
		}
	}
}
