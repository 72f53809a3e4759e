// scenario.go implements manifest loading and module root discovery.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

// Expected scenario outcomes, as written in the manifest.
const (
	// ExpectClean means the scenario must run to completion and exit 0.
	ExpectClean = "clean"

	// ExpectViolation means the scenario must trip the verifier: abort
	// with the verifier's exit code under the production backend, or
	// fault under the analysis backend.
	ExpectViolation = "violation"
)

// Scenario is one entry of the corpus manifest.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `toml:"name"`

	// Dir is the scenario's main package directory, relative to the
	// module root.
	Dir string `toml:"dir"`

	// Expect is ExpectClean or ExpectViolation.
	Expect string `toml:"expect"`

	// Description says which borrow contract the scenario exercises.
	Description string `toml:"description"`
}

// Manifest is the TOML scenario corpus description.
type Manifest struct {
	Scenario []Scenario `toml:"scenario"`
}

// loadManifest reads and validates the manifest at path.
func loadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if len(m.Scenario) == 0 {
		return nil, fmt.Errorf("manifest %s lists no scenarios", path)
	}

	seen := make(map[string]bool, len(m.Scenario))
	for _, sc := range m.Scenario {
		if sc.Name == "" || sc.Dir == "" {
			return nil, fmt.Errorf("manifest %s: scenario with empty name or dir", path)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("manifest %s: duplicate scenario %q", path, sc.Name)
		}
		seen[sc.Name] = true
		if sc.Expect != ExpectClean && sc.Expect != ExpectViolation {
			return nil, fmt.Errorf("manifest %s: scenario %q: expect must be %q or %q, got %q",
				path, sc.Name, ExpectClean, ExpectViolation, sc.Expect)
		}
	}
	return &m, nil
}

// findModuleRoot walks up from the working directory until it finds a
// go.mod, and returns the directory plus the module path parsed from it.
func findModuleRoot() (dir, module string, err error) {
	dir, err = os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("getwd: %w", err)
	}

	for {
		gomod := filepath.Join(dir, "go.mod")
		data, readErr := os.ReadFile(gomod)
		if readErr == nil {
			f, parseErr := modfile.ParseLax(gomod, data, nil)
			if parseErr != nil {
				return "", "", fmt.Errorf("parse %s: %w", gomod, parseErr)
			}
			if f.Module == nil {
				return "", "", fmt.Errorf("%s has no module directive", gomod)
			}
			return dir, f.Module.Mod.Path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("no go.mod found above working directory")
		}
		dir = parent
	}
}
