// Package filter provides the declarative (pallet, variant) predicate used
// by the engine to statically pre-filter events before a handler ever sees
// them.
package filter

import "github.com/flamewire/taotrace/event"

// kind discriminates the three EventFilter cases.
type kind int

const (
	kindAll kind = iota
	kindPallet
	kindEvent
)

// EventFilter is a tagged variant over three cases: accept every event,
// accept any event from a given pallet, or accept a single exact
// (pallet, variant) pair. Equality of filter arguments is case-sensitive.
//
// The zero value is equal to All() and accepts every event; use All,
// Pallet, or Event to construct one explicitly.
type EventFilter struct {
	kind    kind
	pallet  string
	variant string
}

// All returns a filter that accepts every event.
func All() EventFilter {
	return EventFilter{kind: kindAll}
}

// Pallet returns a filter that accepts any event emitted by the named
// pallet, regardless of variant.
func Pallet(name string) EventFilter {
	return EventFilter{kind: kindPallet, pallet: name}
}

// Event returns a filter that accepts only the exact (pallet, variant) pair.
func Event(pallet, variant string) EventFilter {
	return EventFilter{kind: kindEvent, pallet: pallet, variant: variant}
}

// Matches reports whether ev satisfies the filter.
func (f EventFilter) Matches(ev event.ChainEvent) bool {
	switch f.kind {
	case kindAll:
		return true
	case kindPallet:
		return f.pallet == ev.PalletName
	case kindEvent:
		return f.pallet == ev.PalletName && f.variant == ev.VariantName
	default:
		return false
	}
}

// String returns a human-readable description of the filter, used in logs.
func (f EventFilter) String() string {
	switch f.kind {
	case kindAll:
		return "All"
	case kindPallet:
		return "Pallet(" + f.pallet + ")"
	case kindEvent:
		return "Event(" + f.pallet + "," + f.variant + ")"
	default:
		return "Unknown"
	}
}
