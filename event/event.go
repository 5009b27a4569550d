// Package event defines the core data structures carried through the
// handler graph: decoded chain events and the per-block context they are
// delivered with.
package event

import (
	"fmt"

	"github.com/flamewire/taotrace/internal/hex"
)

// Hash is an opaque fixed-width chain hash (32 bytes, matching Substrate's
// default BlakeTwo256 digest width).
type Hash [32]byte

// String renders the hash as a "0x"-prefixed hex string, the form it
// appears in logs and error messages.
func (h Hash) String() string {
	return hex.Encode(h[:])
}

// Phase identifies when during block execution an event was emitted.
type Phase int

const (
	// PhaseInitialization marks events emitted during block initialization,
	// before any extrinsic is applied.
	PhaseInitialization Phase = iota
	// PhaseApplyExtrinsic marks events emitted while applying an extrinsic.
	// ExtrinsicIndex identifies which extrinsic produced the event.
	PhaseApplyExtrinsic
	// PhaseFinalization marks events emitted during block finalization,
	// after all extrinsics have been applied.
	PhaseFinalization
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseInitialization:
		return "Initialization"
	case PhaseApplyExtrinsic:
		return "ApplyExtrinsic"
	case PhaseFinalization:
		return "Finalization"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ChainEvent represents one decoded event within a block.
//
// Index values across a block's events are dense and strictly ascending,
// starting from zero; it is a bug in the engine (never in caller code) if
// this invariant is violated.
type ChainEvent struct {
	// PalletName is the short name of the pallet that emitted the event.
	PalletName string

	// VariantName is the short name of the event variant within the pallet.
	VariantName string

	// Index is this event's zero-based, strictly ascending position within
	// the block's event list.
	Index int

	// Phase identifies when during block execution this event fired.
	Phase Phase

	// ExtrinsicIndex is the index of the extrinsic that produced this event.
	// Only meaningful when Phase == PhaseApplyExtrinsic.
	ExtrinsicIndex uint32

	// Payload is the opaque decoded field layout, preserved verbatim for
	// later typed reinterpretation by handlers that know the event's shape.
	// The engine never inspects or mutates it.
	Payload []byte
}

// Signature returns the "pallet.variant" identifier used in error messages
// and logs.
func (e ChainEvent) Signature() string {
	return e.PalletName + "." + e.VariantName
}
