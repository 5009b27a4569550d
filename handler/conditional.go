package handler

import (
	"context"

	"github.com/flamewire/taotrace/event"
	"github.com/flamewire/taotrace/filter"
)

// Conditional wraps a child Handler and gates HandleEvent on an additional
// predicate evaluated against the specific event, on top of the child's own
// EventFilter. It is useful for per-event business rules that don't fit the
// pallet/variant shape of filter.EventFilter, e.g. "only stakes above N
// rao".
//
// HandleBlock and HandleError are forwarded to the child unconditionally;
// the predicate only gates HandleEvent, matching
// original_source/src/handler.rs's ConditionalHandler.
type Conditional struct {
	child Handler
	pred  func(event.ChainEvent) bool
}

// NewConditional wraps child so that HandleEvent is only invoked for events
// for which pred returns true. Events rejected by pred are treated as
// successfully handled (nil error), not as a failure.
func NewConditional(child Handler, pred func(event.ChainEvent) bool) *Conditional {
	return &Conditional{child: child, pred: pred}
}

// EventFilter delegates to the child. The predicate is evaluated later, in
// HandleEvent, since filter.EventFilter has no room for arbitrary
// predicates.
func (c *Conditional) EventFilter() filter.EventFilter {
	return c.child.EventFilter()
}

// HandleEvent invokes the child's HandleEvent only if pred(ev) is true.
func (c *Conditional) HandleEvent(ctx context.Context, ev event.ChainEvent, blockCtx *event.Context) error {
	if !c.pred(ev) {
		return nil
	}
	return c.child.HandleEvent(ctx, ev, blockCtx)
}

// HandleBlock forwards to the child unconditionally.
func (c *Conditional) HandleBlock(ctx context.Context, events []event.ChainEvent, blockCtx *event.Context) error {
	return c.child.HandleBlock(ctx, events, blockCtx)
}

// HandleError forwards to the child.
func (c *Conditional) HandleError(ctx context.Context, err error, blockCtx *event.Context) {
	c.child.HandleError(ctx, err, blockCtx)
}

// Name forwards to the child.
func (c *Conditional) Name() string {
	return c.child.Name()
}
