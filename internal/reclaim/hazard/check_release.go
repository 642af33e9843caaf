//go:build !debug

package hazard

// debugChecks is false in release builds: callers are trusted to honor the
// documented preconditions and the checks compile away entirely.
const debugChecks = false
