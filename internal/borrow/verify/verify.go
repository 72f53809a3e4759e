// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package verify implements the single invariant-check primitive behind
// every borrow precondition.
//
// Check is called at every point where the public API states a
// precondition on the borrow-state counter. When the condition holds it
// returns immediately; when it fails, the failure is routed to exactly
// one of:
//
//   - an installed Handler (SetHandler), used by tests and by embedders
//     that want to observe violations without dying;
//   - otherwise the build-selected backend: the production backend
//     formats a report and terminates the process, the analysis backend
//     (build tag "borrowfault") performs a deliberate nil-pointer
//     dereference so external static-analysis tooling can be graded
//     against known-bad borrow patterns.
//
// Violations are never recoverable and never surface as error values.
// Once an aliasing contract is broken the process state is suspect by
// definition; the only honest continuation is none.
package verify

import (
	"sync/atomic"

	"github.com/kolkov/borrowcheck/internal/borrow/report"
)

// ExitCode is the process exit status the production backend terminates
// with. It matches the Go race detector's halt_on_error convention so CI
// that already treats 66 as "sanitizer found a bug" needs no special
// casing. The analysis backend does not exit; it faults.
const ExitCode = 66

// Handler intercepts violations instead of the build-selected backend.
// A handler must not assume library state is still coherent: the atomic
// transition that exposed the violation has already happened.
type Handler func(*report.Violation)

var (
	// handler, when non-nil, replaces the backend for every violation.
	handler atomic.Pointer[Handler]

	// violations counts every failed check since process start.
	violations atomic.Uint64
)

// Check verifies one borrow precondition.
//
// ok is the precondition result computed by the caller from the value an
// atomic counter operation observed. kind, op and contract identify the
// failed contract in the diagnostic; observed is the counter value at
// the moment of the operation.
//
// Check never returns on failure under the production backend.
func Check(ok bool, kind report.Kind, op, contract string, observed int32) {
	if ok {
		return
	}

	violations.Add(1)
	v := report.New(kind, op, contract, observed, 1)

	if h := handler.Load(); h != nil {
		(*h)(v)
		return
	}
	fail(v)
}

// SetHandler installs h as the violation interceptor and returns the
// previous one (nil if the backend was active). Passing nil restores
// the build-selected backend.
//
// Safe for concurrent use, but installing a handler while other
// goroutines are mid-violation is inherently racy; tests should install
// handlers before exercising the library.
func SetHandler(h Handler) Handler {
	var p *Handler
	if h != nil {
		p = &h
	}
	prev := handler.Swap(p)
	if prev == nil {
		return nil
	}
	return *prev
}

// Count returns the number of violations detected since process start.
// Under the production backend this can only ever be observed as 0 or,
// from an installed handler, 1 — the process dies on the first failure.
func Count() uint64 {
	return violations.Load()
}

// ResetCount zeroes the violation counter. Test use only.
func ResetCount() {
	violations.Store(0)
}

// Backend returns the name of the compiled-in failure backend:
// "abort" (production) or "fault" (analysis).
func Backend() string {
	return backendName
}
