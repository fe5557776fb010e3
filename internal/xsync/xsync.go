// Package xsync implements the synchronization tools the runtime needs beyond
// the standard library: a one-shot latch and a cyclic, breakable barrier.
package xsync

import (
	"errors"
	"sync"
)

// ErrBarrierBroken is the panic value raised by Barrier.Wait once the barrier
// has been broken by a failing participant.
var ErrBarrierBroken = errors.New("xsync: barrier broken")

// Latch implements a "latch" synchronization mechanism.
//
// A Latch is a signal that can be waited for until it is triggered.
// Once triggered it never changes state, it's forever triggered.
type Latch struct {
	muTrigger sync.Mutex
	wait      chan struct{}
}

// NewLatch returns an un-triggered latch.
func NewLatch() *Latch {
	return &Latch{
		wait: make(chan struct{}),
	}
}

// Trigger latch.
func (l *Latch) Trigger() {
	l.muTrigger.Lock()
	defer l.muTrigger.Unlock()

	if l.Test() {
		return
	}
	close(l.wait)
}

// Wait waits for the latch to be triggered.
func (l *Latch) Wait() {
	<-l.wait
}

// Test checks whether the latch has been triggered.
func (l *Latch) Test() bool {
	select {
	case <-l.wait:
		return true
	default:
		return false
	}
}

// WaitChan returns the channel that is closed when the latch triggers.
func (l *Latch) WaitChan() <-chan struct{} {
	return l.wait
}

// Barrier is a cyclic barrier for a fixed number of parties.
//
// Every call to Wait blocks until all parties of the current generation have
// arrived, then all of them are released together and the barrier resets for
// the next generation. A broken barrier releases every waiter, current and
// future, by panicking with ErrBarrierBroken.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	arrived    int
	generation uint64
	broken     bool
}

// NewBarrier returns a barrier for the given number of parties. Parties must be
// at least 1.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		panic("xsync.NewBarrier: parties must be >= 1")
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of parties the barrier synchronizes.
func (b *Barrier) Parties() int {
	return b.parties
}

// Wait blocks until all parties called Wait for the current generation.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		panic(ErrBarrierBroken)
	}
	gen := b.generation
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}
	if b.broken && gen == b.generation {
		panic(ErrBarrierBroken)
	}
}

// Break marks the barrier as broken and wakes up every waiting party.
func (b *Barrier) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broken = true
	b.cond.Broadcast()
}

// IsBroken reports whether Break was called.
func (b *Barrier) IsBroken() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broken
}

// Generation returns how many times the barrier has tripped.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
