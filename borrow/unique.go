// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package borrow

import (
	"github.com/kolkov/borrowcheck/internal/borrow/counter"
	"github.com/kolkov/borrowcheck/internal/borrow/report"
	"github.com/kolkov/borrowcheck/internal/borrow/verify"
)

// Unique is the exclusive read-write borrow handle. At most one may
// exist per Owner at any instant, and it excludes all Shared handles.
//
// While a Unique handle is alive the Owner's own value pointer is
// cleared — the value is physically reachable only through the handle.
// Release restores the pointer to the Owner, so borrow → release →
// re-borrow cycles work indefinitely.
//
// Unique is not duplicable in any form: there is no Clone, and struct
// copies are flagged by go vet.
type Unique[T any] struct {
	_ noCopy

	// raw points at the borrowed value, mutable.
	raw *T

	// cnt is the Owner's counter; nil once released.
	cnt *counter.Counter

	// slot is the address of the Owner's value field, used to hand the
	// pointer back on release. Not a back-reference to the Owner.
	slot **T
}

// Ptr returns the mutable pointer to the borrowed value.
func (u *Unique[T]) Ptr() *T {
	return u.raw
}

// Set overwrites the borrowed value in place.
func (u *Unique[T]) Set(v T) {
	*u.raw = v
}

// Release returns the exclusive borrow to the Owner and restores the
// Owner's value pointer.
//
// The counter is incremented in one atomic step; the observed prior
// state must be exactly exclusive. Anything else means a second
// exclusive borrow was concurrently and illegally created, or the
// counter was corrupted. The handle becomes inert afterwards; a second
// Release is itself a violation.
func (u *Unique[T]) Release() {
	if u.cnt == nil {
		verify.Check(false, report.KindDoubleRelease,
			"Unique.Release", "handle already released", 0)
		return
	}

	prev := u.cnt.ReleaseUnique()
	verify.Check(prev == counter.Exclusive, report.KindBorrowState,
		"Unique.Release", "counter must be exclusive before release", prev)

	if u.slot != nil {
		*u.slot = u.raw
	}
	u.raw = nil
	u.cnt = nil
	u.slot = nil
}
