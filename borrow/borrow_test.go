// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package borrow

import (
	"sync"
	"testing"

	"github.com/kolkov/borrowcheck/internal/borrow/report"
	"github.com/kolkov/borrowcheck/internal/borrow/verify"
)

// intercept collects violations for the duration of a test instead of
// letting the backend terminate the process. Tests read the slice after
// exercising the library. The handler is mutex-protected so concurrent
// tests can record violations from any goroutine.
func intercept(t *testing.T) *[]*report.Violation {
	t.Helper()
	var (
		mu  sync.Mutex
		got []*report.Violation
	)
	prev := verify.SetHandler(func(v *report.Violation) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, v)
	})
	t.Cleanup(func() { verify.SetHandler(prev) })
	verify.ResetCount()
	return &got
}

// requireClean fails the test if any violation was recorded.
func requireClean(t *testing.T, got *[]*report.Violation) {
	t.Helper()
	if len(*got) != 0 {
		t.Fatalf("expected no violations, got %d; first: %v", len(*got), (*got)[0])
	}
}

// requireViolation fails the test unless at least one violation was
// recorded, and returns the first.
func requireViolation(t *testing.T, got *[]*report.Violation) *report.Violation {
	t.Helper()
	if len(*got) == 0 {
		t.Fatal("expected a violation, got none")
	}
	return (*got)[0]
}
