//go:build debug

package hazard

// debugChecks enables the expensive misuse checks: the Get spin bound and
// the Destroy state verification. Checked builds are selected with
// -tags debug; release builds compile the guarded branches away.
const debugChecks = true
