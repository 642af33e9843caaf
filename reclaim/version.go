package reclaim

import "github.com/kolkov/reclaim/internal/reclaim/hazard"

// Version information for the Pure-Go memory reclamation primitives.
const (
	// Version is the current version of the reclamation runtime.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the reclamation primitives.
type Info struct {
	// Version is the runtime version string.
	Version string

	// Technique is the reclamation technique implemented.
	Technique string

	// Checked indicates whether misuse checks are compiled in
	// (-tags debug).
	Checked bool
}

// GetInfo returns information about the reclamation runtime.
//
// Example:
//
//	info := reclaim.GetInfo()
//	fmt.Printf("reclaim %s (%s, checked=%v)\n", info.Version, info.Technique, info.Checked)
func GetInfo() Info {
	return Info{
		Version:   Version,
		Technique: "hazard pointers",
		Checked:   hazard.Checked(),
	}
}
