// Package hazard implements the hazard-pointer primitive for the Pure-Go
// memory reclamation runtime.
//
// A hazard is a single atomic pointer-sized slot through which a mutator
// thread announces "I am currently using the object at this address". The
// reclamation sweep consults every hazard before freeing anything, so an
// object whose address is published in some hazard is never deallocated out
// from under its user.
//
// Hazards are only useful shared, so they come in pairs: Create allocates
// one Hazard on the heap and returns the two connected ends. The Writer end
// is passed around locally by the thread doing the protecting; the Reader
// end is handed to the global sweep, which polls it during collection. The
// split is asymmetric on purpose: only the Reader side, which holds the
// global liveness view, may ever deallocate the shared slot.
//
// # State encoding
//
// The slot encodes four logical states in one machine word:
//   - Free:          pointer to the freeSentinel byte
//   - Dead:          pointer to the deadSentinel byte
//   - Blocked:       pointer to the blockedSentinel byte
//   - Protect(addr): any other value, interpreted as the protected address
//
// The three sentinels are package-level variables, so their addresses are
// fixed, distinct, and never freed. Decoding is three pointer compares;
// encoding is branch-free on the Protect fast path.
//
// Blocked is special: Get spins past it instead of returning it. A writer
// blocks its hazard before changing which address it protects, which closes
// the window where a sweep could observe a stale "not protected" value and
// free an object that is about to be protected again (the ABA problem).
package hazard

import (
	"fmt"
	"unsafe"
)

// Sentinel storage. Only the addresses matter; the bytes are never read or
// written. Each is a distinct package-level variable so the compiler cannot
// merge them.
var (
	// blockedSentinel's address encodes the blocked state.
	blockedSentinel byte

	// freeSentinel's address encodes the free state.
	freeSentinel byte

	// deadSentinel's address encodes the dead state.
	deadSentinel byte
)

// Kind discriminates the observable states of a hazard.
//
// Blocked is deliberately absent: it is semantically different from the
// other states (readers spin past it rather than observe it), so Get never
// returns it and Set cannot produce it. Use Hazard.Block to block a hazard.
type Kind uint8

const (
	// Free means the hazard does not currently protect any object.
	Free Kind = iota

	// Dead means the hazard is retired and may be deallocated when
	// necessary. This is the only state from which Reader.Destroy is legal.
	Dead

	// Protected means the hazard is protecting the object at State.Addr:
	// the reclamation sweep must not free that address while the hazard
	// remains in this state.
	Protected
)

// State is an observable hazard state: Free, Dead, or Protected with an
// address payload.
//
// Addr is meaningful only when Kind is Protected. It is an opaque address;
// this package never dereferences it. A nil Addr is a valid protected value
// and is distinct from every sentinel.
type State struct {
	// Addr is the protected address when Kind is Protected, nil otherwise.
	Addr unsafe.Pointer

	// Kind is the state discriminant.
	Kind Kind
}

// Protect returns the state protecting addr.
//
// Precondition: addr must not be the address of one of this package's
// sentinels. Callers cannot obtain those addresses through the public API,
// so in practice any address of caller-owned memory (including nil) is
// fine. The precondition is not checked at runtime; a violation would make
// the protection silently decode as Free, Dead, or Blocked.
//
//go:nosplit
func Protect(addr unsafe.Pointer) State {
	return State{Kind: Protected, Addr: addr}
}

// encode maps a state to its single-word representation.
//
//go:nosplit
func (s State) encode() *byte {
	switch s.Kind {
	case Free:
		return &freeSentinel
	case Dead:
		return &deadSentinel
	default:
		return (*byte)(s.Addr)
	}
}

// String returns a human-readable representation of the state.
// Debugging and test output only, never on the hot path.
func (s State) String() string {
	switch s.Kind {
	case Free:
		return "free"
	case Dead:
		return "dead"
	default:
		return fmt.Sprintf("protect(%p)", s.Addr)
	}
}
