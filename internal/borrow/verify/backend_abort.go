// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !borrowfault

// Production failure backend: print the violation report with the call
// stack of the offending operation, then terminate the process with
// ExitCode.

package verify

import (
	"os"

	"github.com/kolkov/borrowcheck/internal/borrow/report"
)

const backendName = "abort"

func fail(v *report.Violation) {
	v.Format(os.Stderr)
	os.Exit(ExitCode)
}
