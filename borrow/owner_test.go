// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package borrow

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/borrowcheck/internal/borrow/counter"
	"github.com/kolkov/borrowcheck/internal/borrow/report"
)

func TestNewAndAccess(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	require.Equal(t, &v, o.Access())
	requireClean(t, got)
}

func TestNewEmpty(t *testing.T) {
	got := intercept(t)

	o := NewEmpty[int]()
	require.Nil(t, o.Access())
	requireClean(t, got)
}

func TestResetReplacesValue(t *testing.T) {
	got := intercept(t)

	o := NewEmpty[int]()
	v := 5
	o.Reset(&v)
	require.Equal(t, &v, o.Access())

	w := 7
	o.Reset(&w)
	require.Equal(t, &w, o.Access())
	requireClean(t, got)
}

func TestResetWhileBorrowed(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	s := o.BorrowShared()

	w := 7
	o.Reset(&w)

	// Both observation points (before and after the pointer write) see
	// the live borrow, so exactly two violations fire.
	require.Len(t, *got, 2)
	viol := (*got)[0]
	require.Equal(t, report.KindBorrowState, viol.Kind)
	require.Equal(t, "Owner.Reset", viol.Op)
	require.Equal(t, int32(1), viol.Observed)

	s.Release()
}

func TestSharedRoundTripAnyOrder(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)

	const n = 20
	handles := make([]*Shared[int], n)
	for i := range handles {
		handles[i] = o.BorrowShared()
	}
	require.Equal(t, int32(n), o.cnt.Load())

	// Release in a random order; the counter must come back to free.
	rand.Shuffle(n, func(i, j int) {
		handles[i], handles[j] = handles[j], handles[i]
	})
	for _, h := range handles {
		h.Release()
	}

	require.Equal(t, counter.Free, o.cnt.Load())
	require.Equal(t, &v, o.Access())
	requireClean(t, got)
}

func TestSharedValueAndPtr(t *testing.T) {
	got := intercept(t)

	v := 42
	o := New(&v)
	s := o.BorrowShared()

	require.Equal(t, 42, s.Value())
	require.Equal(t, &v, s.Ptr())

	s.Release()
	requireClean(t, got)
}

func TestUniqueMutatesValue(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)

	u := o.BorrowUnique()
	*u.Ptr() = 6
	u.Set(7)
	u.Release()

	require.Equal(t, 7, *o.Access())
	requireClean(t, got)
}

func TestUniqueClearsOwnerPointer(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)

	u := o.BorrowUnique()
	// The Owner's own pointer is physically removed while the unique
	// borrow is out.
	require.Nil(t, o.value)
	require.Equal(t, &v, u.Ptr())

	u.Release()
	// Release hands the pointer back.
	require.Equal(t, &v, o.Access())
	requireClean(t, got)
}

func TestUniqueReleaseThenReborrow(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)

	a := o.BorrowUnique()
	a.Release()
	b := o.BorrowUnique()
	require.Equal(t, &v, b.Ptr())
	b.Release()

	require.Equal(t, &v, o.Access())
	requireClean(t, got)
}

func TestDoubleUniqueBorrow(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	a := o.BorrowUnique()
	o.BorrowUnique()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindBorrowState, viol.Kind)
	require.Equal(t, "Owner.BorrowUnique", viol.Op)
	require.Equal(t, counter.Exclusive, viol.Observed)

	a.Release()
}

func TestUniqueAfterTwoShared(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	a := o.BorrowShared()
	b := o.BorrowShared()

	o.BorrowUnique()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindBorrowState, viol.Kind)
	require.Equal(t, "Owner.BorrowUnique", viol.Op)
	require.Equal(t, int32(2), viol.Observed)

	a.Release()
	b.Release()
}

func TestSharedWhileUnique(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	u := o.BorrowUnique()

	o.BorrowShared()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindBorrowState, viol.Kind)
	require.Equal(t, "Owner.BorrowShared", viol.Op)
	require.Equal(t, counter.Exclusive, viol.Observed)
	_ = u
}

func TestAccessWhileBorrowed(t *testing.T) {
	tests := []struct {
		name   string
		borrow func(o *Owner[int]) func()
	}{
		{
			name: "shared",
			borrow: func(o *Owner[int]) func() {
				s := o.BorrowShared()
				return s.Release
			},
		},
		{
			name: "unique",
			borrow: func(o *Owner[int]) func() {
				u := o.BorrowUnique()
				return u.Release
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intercept(t)

			v := 5
			o := New(&v)
			release := tt.borrow(o)

			o.Access()

			viol := requireViolation(t, got)
			require.Equal(t, "Owner.Access", viol.Op)

			release()
		})
	}
}

func TestDropWhileBorrowed(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	s := o.BorrowShared()

	o.Drop()

	viol := requireViolation(t, got)
	require.Equal(t, "Owner.Drop", viol.Op)
	require.Equal(t, int32(1), viol.Observed)

	s.Release()
}

func TestDropFree(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	o.Drop()
	require.Nil(t, o.Access())
	requireClean(t, got)
}

func TestCloneFanOut(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)

	a := o.BorrowShared()
	b := a.Clone()
	c := b.Clone()
	require.Equal(t, int32(3), o.cnt.Load())
	require.Equal(t, 5, c.Value())

	// Release in an order unrelated to acquisition.
	b.Release()
	a.Release()
	c.Release()

	require.Equal(t, counter.Free, o.cnt.Load())
	requireClean(t, got)
}

func TestCloneAfterRelease(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	s := o.BorrowShared()
	s.Release()

	s.Clone()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindDoubleRelease, viol.Kind)
	require.Equal(t, "Shared.Clone", viol.Op)
}

func TestSharedDoubleRelease(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	s := o.BorrowShared()
	s.Release()

	s.Release()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindDoubleRelease, viol.Kind)
	require.Equal(t, "Shared.Release", viol.Op)
	// The first release nil'd the counter pointer, so the underlying
	// counter was not decremented twice.
	require.Equal(t, counter.Free, o.cnt.Load())
}

func TestSharedReleaseUnderflow(t *testing.T) {
	got := intercept(t)

	// A handle wired to a free counter models a release without a
	// matching acquire (corrupted bookkeeping).
	var c counter.Counter
	v := 5
	s := &Shared[int]{raw: &v, cnt: &c}

	s.Release()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindDoubleRelease, viol.Kind)
	require.Equal(t, int32(0), viol.Observed)
}

func TestUniqueDoubleRelease(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	u := o.BorrowUnique()
	u.Release()

	u.Release()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindDoubleRelease, viol.Kind)
	require.Equal(t, "Unique.Release", viol.Op)
	require.Equal(t, counter.Free, o.cnt.Load())
}

func TestUniqueReleaseCorruptCounter(t *testing.T) {
	got := intercept(t)

	// A unique handle whose counter no longer reads exclusive models a
	// concurrently corrupted counter.
	var c counter.Counter
	c.Store(3)
	v := 5
	u := &Unique[int]{raw: &v, cnt: &c}

	u.Release()

	viol := requireViolation(t, got)
	require.Equal(t, report.KindBorrowState, viol.Kind)
	require.Equal(t, "Unique.Release", viol.Op)
	require.Equal(t, int32(3), viol.Observed)
}

func TestMoveTransfersOwnership(t *testing.T) {
	got := intercept(t)

	v := 5
	src := New(&v)
	dst := src.Move()

	// Destination starts free and holds the value; source is empty
	// with a free counter.
	require.Equal(t, counter.Free, dst.cnt.Load())
	require.Equal(t, &v, dst.Access())
	require.Equal(t, counter.Free, src.cnt.Load())
	require.Nil(t, src.Access())

	// The destination is fully functional.
	u := dst.BorrowUnique()
	u.Set(9)
	u.Release()
	require.Equal(t, 9, *dst.Access())
	requireClean(t, got)
}

func TestMoveWhileBorrowed(t *testing.T) {
	tests := []struct {
		name     string
		borrow   func(o *Owner[int]) func()
		observed int32
	}{
		{
			name: "shared outstanding",
			borrow: func(o *Owner[int]) func() {
				s := o.BorrowShared()
				return s.Release
			},
			observed: 1,
		},
		{
			name: "unique outstanding",
			borrow: func(o *Owner[int]) func() {
				u := o.BorrowUnique()
				return u.Release
			},
			observed: counter.Exclusive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intercept(t)

			v := 5
			o := New(&v)
			_ = tt.borrow(o)

			o.Move()

			viol := requireViolation(t, got)
			require.Equal(t, "Owner.Move", viol.Op)
			require.Equal(t, tt.observed, viol.Observed)
		})
	}
}

func TestInertHandleAfterSuppressedViolation(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)
	a := o.BorrowUnique()

	// Second unique borrow: violation suppressed by the test handler,
	// and the returned handle is inert.
	b := o.BorrowUnique()
	require.Len(t, *got, 1)

	// Releasing the inert handle is itself a violation, not a counter
	// transition.
	b.Release()
	require.Len(t, *got, 2)
	require.Equal(t, counter.Exclusive, o.cnt.Load())

	a.Release()
	require.Equal(t, counter.Free, o.cnt.Load())
}

func TestConcurrentSharedBorrows(t *testing.T) {
	got := intercept(t)

	v := 5
	o := New(&v)

	const (
		goroutines = 8
		iterations = 500
	)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				s := o.BorrowShared()
				if s.Value() != 5 {
					t.Error("shared borrow observed wrong value")
					return
				}
				c := s.Clone()
				s.Release()
				c.Release()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, counter.Free, o.cnt.Load())
	require.Equal(t, &v, o.Access())
	requireClean(t, got)
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	require.Equal(t, Version, info.Version)
	require.Contains(t, []string{"abort", "fault"}, info.Backend)
	require.NotEmpty(t, info.Discipline)
}
