// Package main implements the borrowcheck CLI harness.
//
// The harness drives the known-good / known-bad borrow scenario corpus
// under examples/: it builds each scenario program, runs it, classifies
// the outcome (clean exit, verifier abort, or analysis-mode fault), and
// compares the outcome with the expectation recorded in the scenario
// manifest. External static-analysis tools are graded against the same
// corpus; the machine-readable results file gives that pipeline a
// ground truth to compare against.
//
// Usage:
//
//	borrowcheck list                      # show the scenario corpus
//	borrowcheck run                       # run the corpus (abort backend)
//	borrowcheck run --tags borrowfault    # run with analysis-mode faults
//	borrowcheck run --out results.msgpack # also write machine-readable results
//	borrowcheck version                   # library version and backend
//
// The tool requires a working Go toolchain: scenarios are real programs
// built and executed as subprocesses, because a borrow violation kills
// the process that commits it.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kolkov/borrowcheck/borrow"
)

var rootCmd = &cobra.Command{
	Use:           "borrowcheck",
	Short:         "Scenario harness for the runtime borrow checker",
	Long:          "borrowcheck builds and runs the borrow-violation scenario corpus and\nverifies every scenario ends the way its manifest entry expects.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.Version = borrow.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("manifest", "scenarios.toml", "scenario manifest, relative to the module root")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
