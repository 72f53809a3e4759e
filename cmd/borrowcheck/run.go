// run.go implements the 'borrowcheck run' command.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kolkov/borrowcheck/internal/borrow/verify"
)

// Outcome classification for one scenario execution.
const (
	// OutcomeClean: the scenario exited 0.
	OutcomeClean = "clean"

	// OutcomeViolation: the verifier's production backend aborted the
	// process with its fixed exit code.
	OutcomeViolation = "violation"

	// OutcomeFault: the process died on a runtime panic, which is how
	// the analysis backend's deliberate nil dereference presents.
	OutcomeFault = "fault"

	// OutcomeError: build failure, timeout, or an unrecognized exit.
	OutcomeError = "error"
)

// panicExitCode is the status a Go program exits with after an
// unrecovered runtime panic (the analysis backend's nil dereference).
const panicExitCode = 2

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build and run the scenario corpus, checking every outcome",
	Long: `Builds each scenario program listed in the manifest, executes it, and
classifies the outcome: a clean exit, a verifier abort, or an
analysis-mode fault. A scenario passes when its outcome matches the
manifest expectation. Exit status is zero only if every scenario passed.`,
	RunE: runScenarios,
}

func init() {
	runCmd.Flags().String("tags", "", "build tags for scenario builds (e.g. borrowfault)")
	runCmd.Flags().Int("jobs", 4, "maximum scenarios built and run in parallel")
	runCmd.Flags().String("out", "", "write msgpack-encoded results to this file")
	runCmd.Flags().Duration("timeout", 30*time.Second, "per-scenario execution timeout")
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	tags, _ := cmd.Flags().GetString("tags")
	jobs, _ := cmd.Flags().GetInt("jobs")
	outPath, _ := cmd.Flags().GetString("out")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	root, module, err := findModuleRoot()
	if err != nil {
		return err
	}
	manifest, err := loadManifest(filepath.Join(root, manifestPath))
	if err != nil {
		return err
	}

	fmt.Printf("running %d scenarios from %s (module %s)\n",
		len(manifest.Scenario), manifestPath, module)
	if tags != "" {
		fmt.Printf("build tags: %s\n", tags)
	}

	binDir, err := os.MkdirTemp("", "borrowcheck-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(binDir) }()

	results := make([]Result, len(manifest.Scenario))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for i, sc := range manifest.Scenario {
		i, sc := i, sc
		g.Go(func() error {
			results[i] = runOne(ctx, root, binDir, sc, tags, timeout)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		verdict := passColor.Sprint("PASS")
		if !r.Passed {
			verdict = failColor.Sprint("FAIL")
			failed++
		}
		fmt.Printf("%s  %-24s expect=%-9s outcome=%-9s %s\n",
			verdict, r.Name, r.Expect, r.Outcome,
			dimColor.Sprintf("(%dms)", r.DurationMS))
		if !r.Passed && r.Output != "" {
			fmt.Print(indent(r.Output))
		}
	}

	if outPath != "" {
		if err := writeResults(outPath, results); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", outPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	fmt.Printf("all %d scenarios passed\n", len(results))
	return nil
}

// runOne builds and executes a single scenario, classifying its exit.
func runOne(ctx context.Context, root, binDir string, sc Scenario, tags string, timeout time.Duration) Result {
	start := time.Now()
	res := Result{Name: sc.Name, Expect: sc.Expect}

	bin := filepath.Join(binDir, sc.Name)
	buildArgs := []string{"build", "-o", bin}
	if tags != "" {
		buildArgs = append(buildArgs, "-tags", tags)
	}
	buildArgs = append(buildArgs, "./"+filepath.ToSlash(sc.Dir))

	build := exec.CommandContext(ctx, "go", buildArgs...)
	build.Dir = root
	if out, err := build.CombinedOutput(); err != nil {
		res.Outcome = OutcomeError
		res.Output = fmt.Sprintf("build failed: %v\n%s", err, out)
		res.DurationMS = time.Since(start).Milliseconds()
		return res
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := exec.CommandContext(runCtx, bin)
	run.Dir = root
	out, err := run.CombinedOutput()
	res.Output = string(out)
	res.ExitCode, res.Outcome = classify(runCtx, err)
	res.Passed = matches(sc.Expect, res.Outcome, tags)
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

// classify maps a subprocess exit to an outcome.
func classify(ctx context.Context, err error) (exitCode int, outcome string) {
	if err == nil {
		return 0, OutcomeClean
	}
	if ctx.Err() != nil {
		return -1, OutcomeError
	}

	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return -1, OutcomeError
	}
	code := ee.ExitCode()
	switch code {
	case verify.ExitCode:
		return code, OutcomeViolation
	case panicExitCode:
		return code, OutcomeFault
	default:
		return code, OutcomeError
	}
}

// matches reports whether an outcome satisfies the manifest expectation.
// Under the analysis backend a violation presents as a fault.
func matches(expect, outcome, tags string) bool {
	switch expect {
	case ExpectClean:
		return outcome == OutcomeClean
	case ExpectViolation:
		if strings.Contains(tags, "borrowfault") {
			return outcome == OutcomeFault
		}
		return outcome == OutcomeViolation
	default:
		return false
	}
}

// indent prefixes every line of s for verdict-detail output.
func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("      ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}
