package comm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the arbitration interval used when none is given.
const DefaultTickInterval = time.Second

// Medium is the tick-driven arbiter connecting all actors in a run. It owns a
// single-slot mailbox and three event queues (writers, readers, idle
// waiters); each tick admits at most one write and one read.
//
// A medium must be started before use and stopped when the run ends. Writes,
// reads and waits block the calling goroutine until the tick goroutine
// services the corresponding queued event.
type Medium struct {
	interval time.Duration

	writeQ *EventQueue
	readQ  *EventQueue
	waitQ  *EventQueue

	mu      sync.Mutex
	mailbox Message

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stateMu sync.Mutex
}

// NewMedium creates a stopped medium with the given tick interval. A
// non-positive interval falls back to DefaultTickInterval.
func NewMedium(interval time.Duration) *Medium {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Medium{
		interval: interval,
		writeQ:   NewEventQueue("write"),
		readQ:    NewEventQueue("read"),
		waitQ:    NewEventQueue("wait"),
	}
}

// Interval returns the tick interval.
func (m *Medium) Interval() time.Duration {
	return m.interval
}

// Start launches the tick goroutine.
func (m *Medium) Start() error {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.started {
		return fmt.Errorf("medium already started")
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.started = true
	m.wg.Add(1)
	go m.loop()
	return nil
}

// Stop cancels the tick goroutine, waits for it to exit, and releases every
// waiter still blocked on the medium. Released readers observe whatever the
// mailbox holds, which for an undelivered run is the empty sentinel.
func (m *Medium) Stop() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if !m.started {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.started = false
	m.writeQ.DequeueAll()
	m.readQ.DequeueAll()
	m.waitQ.DequeueAll()
}

// loop runs one arbitration step per tick:
//
//  1. If a write is pending and no recipient owns the mailbox, release one
//     writer, then sleep an extra interval so a write and its matching read
//     never complete within the same instant.
//  2. If the mailbox is occupied, release one eligible reader.
//  3. Release every idle waiter.
func (m *Medium) loop() {
	defer m.wg.Done()
	for tick := 1; ; tick++ {
		if !m.sleep() {
			return
		}
		slog.Debug("tick", "n", tick)
		if m.writeQ.Len() > 0 && m.readQ.Token() == "" {
			m.writeQ.Dequeue()
			if !m.sleep() {
				return
			}
		}
		if !m.snapshot().IsEmpty() {
			m.readQ.Dequeue()
		}
		m.waitQ.DequeueAll()
	}
}

func (m *Medium) sleep() bool {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()
	select {
	case <-m.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Write blocks until the medium admits the write, then installs the message
// into the mailbox and locks the reader queue onto the message's recipient.
// The mailbox is single-slot: an undelivered prior message is overwritten.
func (m *Medium) Write(msg Message, priority int, timeout time.Duration) error {
	if err := m.writeQ.Enqueue(priority, "", timeout); err != nil {
		return err
	}
	m.mu.Lock()
	m.mailbox = msg.Copy()
	m.mu.Unlock()
	m.readQ.SetToken(msg.Recipient)
	return nil
}

// Read blocks until the medium delivers a message, consuming it. An empty
// recipient accepts any message; otherwise the read is only eligible while
// the mailbox holds a message addressed to that recipient.
func (m *Medium) Read(recipient string, priority int, timeout time.Duration) (Message, error) {
	if err := m.readQ.Enqueue(priority, recipient, timeout); err != nil {
		return Message{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := m.mailbox
	m.mailbox = Message{}
	return msg, nil
}

// Peek blocks until the medium delivers a copy of the mailbox contents
// without consuming them or disturbing the reader-queue token.
func (m *Medium) Peek(priority int, timeout time.Duration) (Message, error) {
	if err := m.readQ.Enqueue(priority, peekToken, timeout); err != nil {
		return Message{}, err
	}
	return m.snapshot(), nil
}

// Wait blocks the caller for the given number of arbitration ticks without
// touching the mailbox.
func (m *Medium) Wait(ticks int) {
	for i := 0; i < ticks; i++ {
		m.waitQ.Enqueue(0, "", 0) //nolint:errcheck // no timeout, cannot fail
	}
}

func (m *Medium) snapshot() Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mailbox.Copy()
}
