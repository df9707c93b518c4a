// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package natprobe

import (
	"sync"
)

// Packet is an inbound probe datagram, reduced to its source address and
// plain-text payload.
type Packet struct {
	// Source is the address the datagram arrived from.
	Source Address
	// Message is the plain-text payload.
	Message string
}

// Expectation is a pending wait for a probe message. It resolves at most
// once; the resolved packet is delivered through the channel returned by
// [Expectation.C].
type Expectation struct {
	c chan Packet
}

// C returns the channel the expectation resolves on. It yields exactly one
// packet if the expectation is met and never closes, so callers must bound
// their wait themselves.
func (e *Expectation) C() <-chan Packet {
	return e.c
}

// Correlator matches asynchronously arriving inbound packets to expectations
// registered by exact message text. It is the only state shared between
// concurrent classification runs and the network receive path, and all its
// operations are safe for concurrent use. No lock is held while a caller
// waits on an expectation; synchronization covers only the register, resolve,
// and forget operations themselves.
type Correlator struct {
	mu      sync.Mutex
	pending map[string]*Expectation
}

func NewCorrelator() *Correlator {
	return &Correlator{
		pending: make(map[string]*Expectation),
	}
}

// Expect registers a single-resolution wait for the given message text.
// Registration is last-register-wins: if an expectation for the same text is
// already pending, the new one replaces it and the superseded handle never
// resolves. Callers must treat replacement as implicit cancellation of the
// older wait.
func (c *Correlator) Expect(message string) *Expectation {
	e := &Expectation{c: make(chan Packet, 1)}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[message] = e
	return e
}

// Dispatch resolves the pending expectation for the given message, if any,
// and removes it from the table. It reports whether a waiter was resolved.
// Duplicate deliveries are no-ops because the first dispatch removes the
// entry. Dispatch is intended to be called from the network receive path.
func (c *Correlator) Dispatch(source Address, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.pending[message]
	if !ok {
		return false
	}
	delete(c.pending, message)
	// The channel is buffered with capacity 1 and this is the only send on
	// it, so the resolved packet is handed over without blocking even when
	// the waiter already gave up.
	e.c <- Packet{Source: source, Message: message}
	return true
}

// Forget abandons the given expectation after a caller-side timeout, removing
// it from the pending table. It is a no-op when the expectation was already
// resolved or replaced by a newer registration for the same message, so a
// stale timeout can never cancel someone else's wait.
func (c *Correlator) Forget(message string, e *Expectation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.pending[message]; ok && cur == e {
		delete(c.pending, message)
	}
}

// Pending returns the number of outstanding expectations.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
