package borrow

import "github.com/kolkov/borrowcheck/internal/borrow/verify"

// Version information for the runtime borrow checker.
const (
	// Version is the current version of the borrow checker runtime.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the borrow checker.
type Info struct {
	// Version is the runtime version string.
	Version string

	// Discipline names the enforced aliasing model.
	Discipline string

	// Backend is the compiled-in failure backend: "abort" (production)
	// or "fault" (analysis builds tagged borrowfault).
	Backend string
}

// GetInfo returns information about the borrow checker runtime.
//
// Example:
//
//	info := borrow.GetInfo()
//	fmt.Printf("borrowcheck %s (%s backend)\n", info.Version, info.Backend)
func GetInfo() Info {
	return Info{
		Version:    Version,
		Discipline: "single writer xor many readers",
		Backend:    verify.Backend(),
	}
}
