// Package session tracks connected clients: their connection ids, the
// player each one is logged in as and the queue of output lines waiting
// to be written to it.
package session

import (
	"fmt"
	"sync"
)

// DefaultOutboxSize is the number of pending messages an Outbox holds
// before Push starts failing.
const DefaultOutboxSize = 256

// Outbox queues output for one connection. The engine pushes without
// blocking and a writer goroutine drains Events onto the socket.
type Outbox struct {
	owner  string
	events chan []string
	mu     sync.Mutex
	closed bool
}

// NewOutbox creates an Outbox labelled owner for error messages.
//
// Postcondition: Returns an Outbox with an open events channel.
func NewOutbox(owner string, bufferSize int) *Outbox {
	if bufferSize <= 0 {
		bufferSize = DefaultOutboxSize
	}
	return &Outbox{
		owner:  owner,
		events: make(chan []string, bufferSize),
	}
}

// Push enqueues one message of one or more lines.
//
// Postcondition: lines are enqueued, or an error is returned if the outbox
// is closed or full.
func (o *Outbox) Push(lines ...string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox %s is closed", o.owner)
	}
	select {
	case o.events <- lines:
		return nil
	default:
		return fmt.Errorf("outbox %s buffer full", o.owner)
	}
}

// Events returns the read-only message channel. It is closed by Close once
// the buffered messages have been delivered.
func (o *Outbox) Events() <-chan []string {
	return o.events
}

// Close stops accepting messages and closes the events channel.
//
// Postcondition: Further Push calls return an error.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.events)
	}
}

// IsClosed reports whether the outbox has been closed.
func (o *Outbox) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
