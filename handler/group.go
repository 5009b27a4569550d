package handler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/flamewire/taotrace/event"
	"github.com/flamewire/taotrace/filter"
)

// Group composes child handlers into a single Handler. Composition is
// closed: a Group is itself a Handler and may be nested inside another
// Group.
//
// Two execution modes are selected at construction: NewSequentialGroup runs
// children in declaration order on the calling goroutine; NewParallelGroup
// schedules every matching child concurrently via errgroup.
//
// Group.EventFilter always returns filter.All(); filtering happens per
// child. Group.HandleError is intentionally a no-op — a failing child is
// already notified by the group's own dispatch loop below, exactly once,
// before the error is recorded or propagated. The group object itself
// never independently "fails", so it has nothing further to observe.
type Group struct {
	children []Handler
	strict   bool
	parallel bool
	name     string
}

// NewSequentialGroup creates a pipeline that runs children in declaration
// order on the calling goroutine.
func NewSequentialGroup(name string) *Group {
	return &Group{name: name}
}

// NewParallelGroup creates a fan-out group that schedules every matching
// child concurrently for a given event or block.
func NewParallelGroup(name string) *Group {
	return &Group{name: name, parallel: true}
}

// Strict enables abort-on-first-error semantics and returns the group for
// chaining. In a sequential group, strict mode skips every child declared
// after the failing one. In a parallel group, strict mode cancels
// outstanding siblings' context on the first error (best-effort) and
// returns immediately instead of waiting for stragglers.
func (g *Group) Strict() *Group {
	g.strict = true
	return g
}

// Add appends a child handler to the group and returns the group for
// chaining.
func (g *Group) Add(h Handler) *Group {
	g.children = append(g.children, h)
	return g
}

// AddConditional appends a ConditionalHandler wrapping h with pred.
func (g *Group) AddConditional(h Handler, pred func(event.ChainEvent) bool) *Group {
	return g.Add(NewConditional(h, pred))
}

// EventFilter always returns filter.All(); per-child filtering happens
// inside HandleEvent.
func (g *Group) EventFilter() filter.EventFilter {
	return filter.All()
}

// Name returns the group's identifier, used in error messages.
func (g *Group) Name() string {
	return g.name
}

// HandleError is a no-op; see the Group doc comment.
func (g *Group) HandleError(context.Context, error, *event.Context) {}

// HandleEvent dispatches ev to every child whose EventFilter matches it, in
// the group's execution mode, and returns the first recorded error (if
// any) once dispatch completes according to strict/non-strict rules.
func (g *Group) HandleEvent(ctx context.Context, ev event.ChainEvent, blockCtx *event.Context) error {
	if g.parallel {
		return g.dispatchParallel(ctx, func(ctx context.Context, h Handler) error {
			if !h.EventFilter().Matches(ev) {
				return nil
			}
			return h.HandleEvent(ctx, ev, blockCtx)
		}, blockCtx)
	}
	return g.dispatchSequential(func(h Handler) error {
		if !h.EventFilter().Matches(ev) {
			return nil
		}
		return h.HandleEvent(ctx, ev, blockCtx)
	}, blockCtx)
}

// HandleBlock dispatches to every child unconditionally (handle_block is
// not gated by EventFilter), in the group's execution mode.
func (g *Group) HandleBlock(ctx context.Context, events []event.ChainEvent, blockCtx *event.Context) error {
	if g.parallel {
		return g.dispatchParallel(ctx, func(ctx context.Context, h Handler) error {
			return h.HandleBlock(ctx, events, blockCtx)
		}, blockCtx)
	}
	return g.dispatchSequential(func(h Handler) error {
		return h.HandleBlock(ctx, events, blockCtx)
	}, blockCtx)
}

// dispatchSequential runs call(h) for each child in declaration order. On
// error, the failing child's HandleError is invoked; if the group is
// strict the dispatch aborts immediately, otherwise it continues and the
// first error encountered is returned once every child has run.
func (g *Group) dispatchSequential(call func(h Handler) error, blockCtx *event.Context) error {
	var first error
	for _, h := range g.children {
		if err := call(h); err != nil {
			h.HandleError(context.Background(), err, blockCtx)
			if first == nil {
				first = err
			}
			if g.strict {
				return err
			}
		}
	}
	return first
}

// dispatchParallel runs call(ctx, h) for every child concurrently. In
// strict mode the derived context is cancelled as soon as the first error
// is observed, and dispatchParallel returns that error without waiting for
// stragglers (they are joined in the background; cancellation lets
// well-behaved children exit at their next suspension point). In
// non-strict mode every child runs to completion, under the
// caller's own ctx (no derived cancellation), and the first recorded
// error, if any, is returned.
func (g *Group) dispatchParallel(ctx context.Context, call func(ctx context.Context, h Handler) error, blockCtx *event.Context) error {
	if g.strict {
		eg, egCtx := errgroup.WithContext(ctx)
		first := make(chan error, 1)
		for _, h := range g.children {
			h := h
			eg.Go(func() error {
				err := call(egCtx, h)
				if err != nil {
					h.HandleError(egCtx, err, blockCtx)
					select {
					case first <- err:
					default:
					}
				}
				return err
			})
		}
		done := make(chan error, 1)
		go func() { done <- eg.Wait() }()
		select {
		case err := <-first:
			return err
		case err := <-done:
			return err
		}
	}

	var eg errgroup.Group
	errs := make([]error, len(g.children))
	for i, h := range g.children {
		i, h := i, h
		eg.Go(func() error {
			err := call(ctx, h)
			if err != nil {
				h.HandleError(ctx, err, blockCtx)
				errs[i] = err
			}
			return nil
		})
	}
	_ = eg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
