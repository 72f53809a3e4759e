// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package borrow

import (
	"github.com/kolkov/borrowcheck/internal/borrow/counter"
	"github.com/kolkov/borrowcheck/internal/borrow/report"
	"github.com/kolkov/borrowcheck/internal/borrow/verify"
)

// Shared is a read-only borrow handle. Any number of Shared handles may
// reference the same Owner's value concurrently.
//
// A Shared handle never owns the value; it holds the raw pointer plus
// the Owner's counter. Its lifetime must not exceed the Owner's.
// Duplicate with [Shared.Clone], never by struct copy (go vet flags
// copies): a plain copy would not register the extra borrow.
type Shared[T any] struct {
	_ noCopy

	// raw points at the borrowed value. Read-only by contract.
	raw *T

	// cnt is the Owner's counter; nil once released.
	cnt *counter.Counter
}

// Value returns a copy of the borrowed value. The copy is the
// mechanically read-only accessor: mutating it cannot touch the
// original.
func (s *Shared[T]) Value() T {
	return *s.raw
}

// Ptr returns the raw pointer to the borrowed value for callers that
// cannot afford the copy. Read-only by contract, not by mechanism —
// writing through it is exactly the aliasing bug this package exists to
// catch, and nothing at run time can detect it.
func (s *Shared[T]) Ptr() *T {
	return s.raw
}

// Clone fans the shared borrow out into one more handle without going
// back through the Owner. The counter is incremented exactly as
// [Owner.BorrowShared] would; the observed prior state must be a live
// shared count, since the clone source itself holds a borrow.
func (s *Shared[T]) Clone() *Shared[T] {
	if s.cnt == nil {
		verify.Check(false, report.KindDoubleRelease,
			"Shared.Clone", "handle already released", 0)
		return &Shared[T]{}
	}

	prev := s.cnt.AcquireShared()
	verify.Check(prev > 0, report.KindBorrowState,
		"Shared.Clone", "source must hold a live shared borrow", prev)
	return &Shared[T]{raw: s.raw, cnt: s.cnt}
}

// Release returns the shared borrow to the Owner.
//
// The counter is decremented in one atomic step; the observed prior
// state must be strictly positive, anything else means a release
// without a matching borrow or a corrupted counter. The handle becomes
// inert afterwards, and releasing it a second time is itself a
// violation.
func (s *Shared[T]) Release() {
	if s.cnt == nil {
		verify.Check(false, report.KindDoubleRelease,
			"Shared.Release", "handle already released", 0)
		return
	}

	prev := s.cnt.ReleaseShared()
	verify.Check(prev > 0, report.KindDoubleRelease,
		"Shared.Release", "counter must be positive before release", prev)

	s.raw = nil
	s.cnt = nil
}
