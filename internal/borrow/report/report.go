// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report builds and formats borrow violation reports.
//
// A Violation captures everything the production backend prints before
// terminating the process: which contract failed, the operation that
// tripped it, the counter state the operation observed, the goroutine,
// and the call stack of the offending call site. The output format
// follows the Go race detector report convention (banner, headline,
// indented stack) so existing log tooling that recognizes that shape
// picks these up too.
package report

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/kolkov/borrowcheck/internal/borrow/counter"
	"github.com/kolkov/borrowcheck/internal/borrow/stackdepot"
)

// Kind classifies a violation for the diagnostic headline. The API makes
// no behavioral distinction between kinds — every violation is fatal —
// but the headline text helps a human tell a double release from an
// illegal acquire.
type Kind int

const (
	// KindBorrowState is any acquire/access/transfer attempted while the
	// counter forbids it.
	KindBorrowState Kind = iota

	// KindDoubleRelease is a release without a matching outstanding
	// borrow: releasing an already-released handle, or a counter
	// underflow that means the bookkeeping was corrupted.
	KindDoubleRelease
)

// String returns the headline label for a violation kind.
func (k Kind) String() string {
	switch k {
	case KindBorrowState:
		return "BORROW STATE VIOLATION"
	case KindDoubleRelease:
		return "DOUBLE RELEASE OR COUNTER CORRUPTION"
	default:
		return "UNKNOWN VIOLATION"
	}
}

// Violation describes one failed borrow contract.
type Violation struct {
	// Kind selects the headline.
	Kind Kind

	// Op names the operation that tripped the check, e.g.
	// "Owner.BorrowUnique".
	Op string

	// Contract is the fixed diagnostic text for the failed precondition,
	// e.g. "counter must be free".
	Contract string

	// Observed is the counter value the operation saw.
	Observed int32

	// GoroutineID is the goroutine that performed the operation.
	GoroutineID int64

	// StackHash references the captured call stack in the stackdepot.
	StackHash uint64
}

// New builds a Violation for the current goroutine, capturing the call
// stack of the violating operation.
//
// skip counts stack frames to drop above New itself, so the verifier can
// hide its own plumbing and the stack starts at the user call site.
func New(kind Kind, op, contract string, observed int32, skip int) *Violation {
	return &Violation{
		Kind:        kind,
		Op:          op,
		Contract:    contract,
		Observed:    observed,
		GoroutineID: goroutineID(),
		StackHash:   stackdepot.Capture(skip + 1),
	}
}

// DedupKey identifies the violation site for report deduplication:
// same kind, same operation, same captured stack.
func (v *Violation) DedupKey() string {
	return fmt.Sprintf("%d:%s:%x", v.Kind, v.Op, v.StackHash)
}

// Format writes the full report:
//
//	==================
//	WARNING: DOUBLE RELEASE OR COUNTER CORRUPTION
//	Shared.Release: counter must be positive before release (counter: free) [goroutine 7]
//	  main.run()
//	      /path/to/file.go:15
//	==================
func (v *Violation) Format(w io.Writer) {
	fmt.Fprintf(w, "==================\n")
	fmt.Fprintf(w, "WARNING: %s\n", v.Kind)
	fmt.Fprintf(w, "%s: %s (counter: %s) [goroutine %d]\n",
		v.Op, v.Contract, counter.StateString(v.Observed), v.GoroutineID)

	if stack := stackdepot.Get(v.StackHash); stack != nil {
		fmt.Fprint(w, stack.Format())
	} else {
		fmt.Fprintf(w, "  (no stack trace captured)\n")
	}

	fmt.Fprintf(w, "==================\n")
}

// String renders the report to a string. Used by tests and by the
// analysis harness when collecting diagnostics.
func (v *Violation) String() string {
	var buf strings.Builder
	v.Format(&buf)
	return buf.String()
}

// Error makes a Violation usable as an error value by embedders that
// intercept violations with a custom handler. The library itself never
// returns it — violations are fatal by contract.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s: %s (counter: %s)",
		v.Kind, v.Op, v.Contract, counter.StateString(v.Observed))
}

// goroutineID extracts the current goroutine ID by parsing the first
// line of runtime.Stack output ("goroutine 123 [running]:"). This is
// the slow universal method, which is fine here: it only runs when a
// violation is already being reported.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the numeric goroutine ID from stack trace bytes,
// or 0 if the format is not recognized.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var gid int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
