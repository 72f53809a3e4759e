// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stackdepot stores and deduplicates call stacks for borrow
// violation reports.
//
// A violation report carries the call stack of the operation that broke
// the borrow contract. Stacks are captured with runtime.Callers, hashed
// with FNV-1a, and stored once per unique stack in a global sync.Map so
// repeated violations at the same site (possible when an embedder installs
// a non-fatal handler) do not re-allocate.
//
// Unlike a data-race detector this package is never on a hot path: stacks
// are captured only when an invariant already failed, so the ~1µs cost of
// runtime.Callers plus hashing is irrelevant.
package stackdepot

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

// MaxFrames is the maximum number of stack frames captured per violation.
// Borrow violations are visible at the acquire/release call site, so a
// shallow stack is enough context.
const MaxFrames = 16

// Stack is a captured call stack with fixed capacity.
type Stack struct {
	// PC holds program counters from runtime.Callers. Unused tail
	// entries are zero.
	PC [MaxFrames]uintptr
}

// depot deduplicates stacks by FNV-1a hash.
// Key: uint64 hash. Value: *Stack.
var depot sync.Map

// Capture records the current call stack and returns its hash.
//
// skip is the number of frames to drop on top of Capture itself, so a
// caller passing 1 excludes its own frame. Returns 0 if no stack could
// be captured.
//
// Safe for concurrent use.
func Capture(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return 0
	}

	hash := hashPCs(pcs[:n])
	if _, exists := depot.Load(hash); exists {
		return hash
	}
	depot.Store(hash, &Stack{PC: pcs})
	return hash
}

// Get retrieves a captured stack by hash, or nil if the hash is unknown.
func Get(hash uint64) *Stack {
	if hash == 0 {
		return nil
	}
	val, ok := depot.Load(hash)
	if !ok {
		return nil
	}
	return val.(*Stack)
}

// hashPCs computes the FNV-1a hash of a program-counter slice.
func hashPCs(pcs []uintptr) uint64 {
	h := fnv.New64a()
	for _, pc := range pcs {
		//nolint:gosec // reading the PC value as bytes for hashing only
		b := (*[8]byte)(unsafe.Pointer(&pc))[:]
		_, _ = h.Write(b)
	}
	return h.Sum64()
}

// Format renders the stack in the report style:
//
//	main.run()
//	    /path/to/file.go:15
//
// Runtime-internal frames and the verifier's own frames are filtered so
// the first line shown is the user call that violated the contract.
func (s *Stack) Format() string {
	if s == nil {
		return "  <unknown>\n"
	}

	n := 0
	for n < len(s.PC) && s.PC[n] != 0 {
		n++
	}
	frames := runtime.CallersFrames(s.PC[:n])

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if skipFrame(frame.Function) {
			if !more {
				break
			}
			continue
		}

		fmt.Fprintf(&buf, "  %s()\n", frame.Function)
		fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)

		if !more {
			break
		}
	}

	out := buf.String()
	if out == "" {
		return "  <runtime internal>\n"
	}
	return out
}

// skipFrame reports whether a frame is runtime or verifier plumbing
// rather than user code. Only the named plumbing functions are dropped,
// never whole packages: other functions in those packages (their tests
// included) are legitimate call sites and must render.
func skipFrame(fn string) bool {
	if strings.HasPrefix(fn, "runtime.") {
		return true
	}
	return strings.HasSuffix(fn, "/internal/borrow/verify.Check") ||
		strings.HasSuffix(fn, "/internal/borrow/report.New")
}

// Reset clears the depot. Test use only; not safe against concurrent
// Capture calls.
func Reset() {
	depot = sync.Map{}
}

// Size returns the number of unique stacks currently stored.
func Size() int {
	n := 0
	depot.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
