// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build borrowfault

// Analysis failure backend: trigger a deliberate nil-pointer dereference
// at the check site.
//
// This is not a generic crash. Builds tagged "borrowfault" exist to
// validate external static-analysis tools: the scenario corpus under
// examples/ feeds them known-true and known-false borrow violations, and
// a tool is graded on flagging exactly the scenarios whose execution
// reaches this dereference. The fault is an artifact of that harness,
// not of the library's production behavior.

package verify

import (
	"github.com/kolkov/borrowcheck/internal/borrow/report"
)

const backendName = "fault"

// faultSink stays nil for the lifetime of the process.
var faultSink *int32

// sink keeps the dereference observable so the compiler cannot drop it.
var sink int32

func fail(_ *report.Violation) {
	sink = *faultSink
}
