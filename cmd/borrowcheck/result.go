// result.go defines the machine-readable scenario results written for
// the external grading pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Result records the outcome of one scenario execution. The msgpack
// encoding of []Result is the contract consumed by external tooling
// that grades static analyzers against the corpus.
type Result struct {
	// Name is the scenario name from the manifest.
	Name string `msgpack:"name"`

	// Expect is the manifest expectation ("clean" or "violation").
	Expect string `msgpack:"expect"`

	// Outcome is the classified execution result.
	Outcome string `msgpack:"outcome"`

	// ExitCode is the scenario process's exit status (-1 if it never
	// ran or was killed).
	ExitCode int `msgpack:"exit_code"`

	// Passed is true when Outcome satisfies Expect.
	Passed bool `msgpack:"passed"`

	// DurationMS is build plus run time in milliseconds.
	DurationMS int64 `msgpack:"duration_ms"`

	// Output is the combined stdout/stderr of the scenario, kept only
	// for failed scenarios and for the results file.
	Output string `msgpack:"output,omitempty"`
}

// writeResults encodes results as msgpack to path.
func writeResults(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// readResults decodes a results file written by writeResults.
func readResults(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var results []Result
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}
