// version_test.go tests the version command output.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kolkov/borrowcheck/borrow"
)

// TestVersionCommand verifies the command reports version, discipline,
// and active backend on its configured output stream.
func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	info := borrow.GetInfo()
	for _, want := range []string{
		"borrowcheck " + info.Version,
		"discipline: " + info.Discipline,
		"backend:    " + info.Backend,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}
