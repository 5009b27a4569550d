// Package handler defines the user extension point for the indexing engine
// and the composition primitives (sequential pipelines, parallel fan-out,
// conditional gating) used to build a processing graph out of it.
package handler

import (
	"context"

	"github.com/flamewire/taotrace/event"
	"github.com/flamewire/taotrace/filter"
)

// Handler is the user extension point. Implementations MUST NOT mutate the
// event slice passed to HandleBlock; they MAY mutate the Context scratchpad
// and perform I/O. A Handler SHOULD be idempotent with respect to the block
// it processes, because the engine re-processes a block whenever its
// checkpoint write fails.
type Handler interface {
	// EventFilter is pure and stable across calls; the engine uses it to
	// skip ineligible events before HandleEvent is ever invoked.
	EventFilter() filter.EventFilter

	// HandleEvent is called once per accepted event, in ascending Index
	// order within a block.
	HandleEvent(ctx context.Context, ev event.ChainEvent, blockCtx *event.Context) error

	// HandleBlock is called once per block, after every HandleEvent call for
	// that block has completed (under non-strict semantics). events is a
	// view of every decoded event in the block, regardless of this
	// handler's filter.
	HandleBlock(ctx context.Context, events []event.ChainEvent, blockCtx *event.Context) error

	// HandleError is a non-fallible observation hook invoked when one of
	// this handler's own methods returned an error, before the error
	// propagates further.
	HandleError(ctx context.Context, err error, blockCtx *event.Context)

	// Name is a stable short identifier used in error messages and logs.
	Name() string
}

// Base is an embeddable no-op implementation of Handler. Concrete handlers
// embed Base and override only the methods they need, matching the
// "default implementation returns success" contract from the Handler
// interface.
type Base struct {
	// FilterValue is returned by EventFilter. Left unset, it behaves as
	// filter.All().
	FilterValue filter.EventFilter

	// NameValue is returned by Name.
	NameValue string
}

// EventFilter returns b.FilterValue, defaulting to filter.All() if unset.
func (b Base) EventFilter() filter.EventFilter {
	if b.FilterValue == (filter.EventFilter{}) {
		return filter.All()
	}
	return b.FilterValue
}

// HandleEvent is a no-op that returns success.
func (b Base) HandleEvent(context.Context, event.ChainEvent, *event.Context) error {
	return nil
}

// HandleBlock is a no-op that returns success.
func (b Base) HandleBlock(context.Context, []event.ChainEvent, *event.Context) error {
	return nil
}

// HandleError is a no-op.
func (b Base) HandleError(context.Context, error, *event.Context) {}

// Name returns b.NameValue.
func (b Base) Name() string {
	return b.NameValue
}
