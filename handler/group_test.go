package handler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/flamewire/taotrace/event"
	"github.com/flamewire/taotrace/filter"
)

type failingHandler struct {
	Base
	fail      error
	invoked   atomic.Int32
	errSeen   atomic.Int32
}

func (h *failingHandler) HandleEvent(context.Context, event.ChainEvent, *event.Context) error {
	h.invoked.Add(1)
	return h.fail
}

func (h *failingHandler) HandleError(context.Context, error, *event.Context) {
	h.errSeen.Add(1)
}

// TestStrictSequentialShortCircuit matches scenario 5: H1 -> H2 -> H3, H2
// fails, H3 must not be invoked and only H2 sees handle_error.
func TestStrictSequentialShortCircuit(t *testing.T) {
	h1 := &recordingHandler{Base: Base{NameValue: "h1"}}
	h2 := &failingHandler{Base: Base{NameValue: "h2"}, fail: errors.New("boom")}
	h3 := &recordingHandler{Base: Base{NameValue: "h3"}}

	g := NewSequentialGroup("pipeline").Strict().Add(h1).Add(h2).Add(h3)

	ev := event.ChainEvent{PalletName: "A", VariantName: "X", Index: 0}
	blockCtx := event.NewContext(10, event.Hash{})

	err := g.HandleEvent(context.Background(), ev, blockCtx)
	if err == nil {
		t.Fatal("expected error from strict group")
	}
	if len(h1.events) != 1 {
		t.Fatalf("h1 should have run once, ran %d times", len(h1.events))
	}
	if h2.invoked.Load() != 1 {
		t.Fatalf("h2 should have run once, ran %d times", h2.invoked.Load())
	}
	if h2.errSeen.Load() != 1 {
		t.Fatalf("h2.HandleError should have been called once, got %d", h2.errSeen.Load())
	}
	if len(h3.events) != 0 {
		t.Fatalf("h3 must not run after strict failure, ran %d times", len(h3.events))
	}
}

// TestParallelGroupNonStrictRunsAllSiblings matches scenario 4: all three
// siblings run to completion even though the middle one fails, and only the
// failing sibling's handle_error fires.
func TestParallelGroupNonStrictRunsAllSiblings(t *testing.T) {
	h1 := &recordingHandler{Base: Base{NameValue: "h1"}}
	h2 := &failingHandler{Base: Base{NameValue: "h2"}, fail: errors.New("boom")}
	h3 := &recordingHandler{Base: Base{NameValue: "h3"}}

	g := NewParallelGroup("fanout").Add(h1).Add(h2).Add(h3)

	ev := event.ChainEvent{PalletName: "A", VariantName: "X", Index: 0}
	blockCtx := event.NewContext(5, event.Hash{})

	err := g.HandleEvent(context.Background(), ev, blockCtx)
	if err == nil {
		t.Fatal("expected the group to surface the failing sibling's error")
	}
	if len(h1.events) != 1 || len(h3.events) != 1 {
		t.Fatalf("both non-failing siblings should have run, got h1=%d h3=%d", len(h1.events), len(h3.events))
	}
	if h2.invoked.Load() != 1 {
		t.Fatalf("h2 should have run exactly once, got %d", h2.invoked.Load())
	}
	if h2.errSeen.Load() != 1 {
		t.Fatalf("h2.HandleError should fire exactly once, got %d", h2.errSeen.Load())
	}
}

func TestGroupHandleEventRespectsChildFilter(t *testing.T) {
	child := &recordingHandler{Base: Base{NameValue: "child"}}
	child.FilterValue = filter.Event("Balances", "Transfer")
	g := NewSequentialGroup("pipeline").Add(child)

	blockCtx := event.NewContext(1, event.Hash{})
	if err := g.HandleEvent(context.Background(), event.ChainEvent{PalletName: "Balances", VariantName: "Deposit"}, blockCtx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(child.events) != 0 {
		t.Fatalf("non-matching event should have been skipped, got %+v", child.events)
	}

	if err := g.HandleEvent(context.Background(), event.ChainEvent{PalletName: "Balances", VariantName: "Transfer"}, blockCtx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(child.events) != 1 {
		t.Fatalf("matching event should have been delivered, got %+v", child.events)
	}
}

func TestGroupHandleErrorIsNoOp(t *testing.T) {
	g := NewSequentialGroup("pipeline")
	// Must not panic and must not require any children.
	g.HandleError(context.Background(), errors.New("whatever"), event.NewContext(1, event.Hash{}))
}
