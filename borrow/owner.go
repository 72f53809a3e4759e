// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package borrow

import (
	"github.com/kolkov/borrowcheck/internal/borrow/counter"
	"github.com/kolkov/borrowcheck/internal/borrow/report"
	"github.com/kolkov/borrowcheck/internal/borrow/verify"
)

// Owner exclusively holds one heap value and its borrow-state counter.
//
// The Owner is the sole entry point for creating borrows and for
// replacing or dropping the value. It always holds title to the value's
// storage; handles borrowed from it carry only a reference plus a
// permission token (the shared counter), never ownership.
//
// An Owner must not be copied (go vet flags it); it may change hands
// with [Owner.Move]. The zero value is a valid empty Owner.
type Owner[T any] struct {
	_ noCopy

	// value is the owned pointer; nil while empty or while a unique
	// borrow physically holds it (see BorrowUnique).
	value *T

	// cnt is the borrow-state counter shared with every handle
	// borrowed from this Owner.
	cnt counter.Counter
}

// New creates an Owner already holding v. The counter starts free.
func New[T any](v *T) *Owner[T] {
	return &Owner[T]{value: v}
}

// NewEmpty creates an Owner holding nothing. Use [Owner.Reset] to give
// it a value.
func NewEmpty[T any]() *Owner[T] {
	return &Owner[T]{}
}

// Reset replaces the held value.
//
// Legal only while the counter is free: replacing the value out from
// under a live borrow would turn every outstanding handle into a stale
// alias. The precondition is checked both before and after the pointer
// write so an external data-race detector gets two observation points
// around the unprotected store.
func (o *Owner[T]) Reset(v *T) {
	observed := o.cnt.Load()
	verify.Check(observed == counter.Free, report.KindBorrowState,
		"Owner.Reset", "counter must be free before replacing the value", observed)

	o.value = v

	observed = o.cnt.Load()
	verify.Check(observed == counter.Free, report.KindBorrowState,
		"Owner.Reset", "counter must still be free after replacing the value", observed)
}

// BorrowShared registers one shared (read-only) borrow and returns its
// handle. Any number of shared borrows may coexist.
//
// The counter is incremented unconditionally in a single atomic step;
// if the observed prior state was exclusive (or a move was in flight)
// the verifier fires. When a custom handler suppresses the failure the
// returned handle is live but aliases a value under exclusive hold —
// the caller opted into that.
func (o *Owner[T]) BorrowShared() *Shared[T] {
	prev := o.cnt.AcquireShared()
	verify.Check(prev >= 0, report.KindBorrowState,
		"Owner.BorrowShared", "counter must not be exclusive", prev)
	return &Shared[T]{raw: o.value, cnt: &o.cnt}
}

// BorrowUnique registers the single exclusive (read-write) borrow and
// returns its handle.
//
// Legal only while the counter is free. On success the Owner's own
// value pointer moves into the handle and the Owner's copy is cleared,
// so no accidental concurrent touch through the Owner is structurally
// possible until the handle is released. Releasing the handle restores
// the pointer.
//
// On violation (any borrow already outstanding) the returned handle is
// inert; it only matters when a custom handler suppressed the abort.
func (o *Owner[T]) BorrowUnique() *Unique[T] {
	if !o.cnt.AcquireUnique() {
		verify.Check(false, report.KindBorrowState,
			"Owner.BorrowUnique", "counter must be free", o.cnt.Load())
		return &Unique[T]{}
	}

	u := &Unique[T]{raw: o.value, cnt: &o.cnt, slot: &o.value}
	o.value = nil
	return u
}

// Access returns the owned value directly, without borrow bookkeeping.
//
// Legal only while the counter is free: the Owner is its own implicit
// exclusive accessor here, so any outstanding borrow makes the access a
// violation.
func (o *Owner[T]) Access() *T {
	observed := o.cnt.Load()
	verify.Check(observed == counter.Free, report.KindBorrowState,
		"Owner.Access", "counter must be free", observed)
	return o.value
}

// Drop discards the owned value, leaving the Owner empty.
//
// Legal only while the counter is free. Any handle still alive at this
// point is itself a defect — after Drop it dangles by contract. The Go
// runtime reclaims the storage once the last reference is gone.
func (o *Owner[T]) Drop() {
	observed := o.cnt.Load()
	verify.Check(observed == counter.Free, report.KindBorrowState,
		"Owner.Drop", "counter must be free", observed)
	o.value = nil
}

// Move transfers ownership to a freshly constructed Owner and returns it.
//
// The transfer swaps the transient sentinel into the source counter in
// one atomic step, which must observe the prior state as exactly free.
// This is the one place a concurrent borrow race is explicitly guarded:
// if another goroutine raced to start a borrow, the swap observes a
// non-zero value and the verifier fires instead of silently moving a
// borrowed value. The source is left empty with a free counter.
func (o *Owner[T]) Move() *Owner[T] {
	prev := o.cnt.BeginMove()
	verify.Check(prev == counter.Free, report.KindBorrowState,
		"Owner.Move", "counter must be free during ownership transfer", prev)

	dst := &Owner[T]{value: o.value}
	o.value = nil
	o.cnt.EndMove()
	return dst
}
