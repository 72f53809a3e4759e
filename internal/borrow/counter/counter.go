// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package counter implements the atomic borrow-state machine.
//
// The entire aliasing state of one owned value is encoded in a single
// signed 32-bit counter:
//
//	 0  — free: no borrows outstanding, the owner may touch the value
//	>0  — N shared (read-only) borrows outstanding
//	-1  — exactly one unique (read-write) borrow outstanding
//	-2  — transient ownership-transfer sentinel, never visible to borrowers
//
// Every transition is a single atomic read-modify-write (fetch-add, swap,
// or compare-and-swap) followed by a precondition check on the value the
// operation observed. The counter is the sole synchronization point of the
// whole library: there is no lock, no queue, and no blocking path — a
// transition either happens in one bounded atomic step or the observed
// value proves a contract violation.
//
// The integer encoding is deliberate. A tagged state enum would need a
// lock (or a wider CAS) to update count and tag together; the signed
// counter keeps the shared-borrow fast path to one fetch-add.
package counter

import (
	"fmt"
	"sync/atomic"
)

// Borrow-state encoding. Any value below Moving means the counter
// was corrupted.
const (
	// Free means no borrow is outstanding.
	Free int32 = 0

	// Exclusive means exactly one unique borrow is outstanding.
	Exclusive int32 = -1

	// Moving is the transient sentinel held only for the duration of an
	// ownership transfer. Borrowers can never legally observe it.
	Moving int32 = -2
)

// Counter is the borrow-state counter shared between one owner and all
// handles borrowed from it. The zero value is a free counter.
//
// Handles hold a *Counter, never a copy: every transition must act on
// the same atomic cell the owner allocated.
type Counter struct {
	v atomic.Int32
}

// Load returns the current borrow state.
//
// The value is a snapshot; by the time the caller inspects it another
// goroutine may have transitioned the counter. Precondition checks must
// therefore use the value returned by the mutating operation itself,
// not a prior Load.
func (c *Counter) Load() int32 {
	return c.v.Load()
}

// Store overwrites the borrow state unconditionally.
//
// Only for test setup and for the owner's own end-of-move reset. Never
// call this while handles are outstanding.
func (c *Counter) Store(v int32) {
	c.v.Store(v)
}

// AcquireShared registers one more shared borrow and returns the state
// observed immediately before the increment.
//
// The caller must verify prev >= 0: a negative prior value means a
// unique borrow (or a move) was active and the shared borrow was illegal.
// The increment is performed unconditionally — violations are fatal, so
// there is nothing to roll back for.
func (c *Counter) AcquireShared() (prev int32) {
	return c.v.Add(1) - 1
}

// ReleaseShared unregisters one shared borrow and returns the state
// observed immediately before the decrement.
//
// The caller must verify prev > 0: anything else means a release without
// a matching borrow, or counter corruption.
func (c *Counter) ReleaseShared() (prev int32) {
	return c.v.Add(-1) + 1
}

// AcquireUnique attempts the Free → Exclusive transition.
//
// Reports whether the compare-and-swap succeeded. Failure means some
// borrow was outstanding (shared, unique, or a move in flight) and the
// unique borrow was illegal. Unlike AcquireShared this transition is
// conditional: a blind decrement from an unknown state could make a
// corrupted counter look exclusive.
func (c *Counter) AcquireUnique() bool {
	return c.v.CompareAndSwap(Free, Exclusive)
}

// ReleaseUnique reverses the Exclusive → Free transition and returns
// the state observed immediately before the increment.
//
// The caller must verify prev == Exclusive; any other value means the
// counter was corrupted or the release had no matching borrow.
func (c *Counter) ReleaseUnique() (prev int32) {
	return c.v.Add(1) - 1
}

// BeginMove swaps the Moving sentinel into the counter and returns the
// prior state.
//
// The caller must verify prev == Free. The swap is the one place where
// a concurrent borrow race is explicitly guarded: if another goroutine
// started a borrow between the owner deciding to move and the swap, the
// swap observes a non-zero value and the verification fails loudly
// instead of silently transferring a borrowed value.
func (c *Counter) BeginMove() (prev int32) {
	return c.v.Swap(Moving)
}

// EndMove resets the source counter to Free after a transfer.
func (c *Counter) EndMove() {
	c.v.Store(Free)
}

// State returns a human-readable name for the current borrow state.
// Used in violation diagnostics only.
func (c *Counter) State() string {
	return StateString(c.Load())
}

// StateString formats a raw counter value for diagnostics.
func StateString(v int32) string {
	switch {
	case v == Free:
		return "free"
	case v > 0:
		return fmt.Sprintf("shared(%d)", v)
	case v == Exclusive:
		return "exclusive"
	case v == Moving:
		return "moving"
	default:
		return fmt.Sprintf("corrupt(%d)", v)
	}
}
