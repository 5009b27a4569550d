package handler

import (
	"context"
	"testing"

	"github.com/flamewire/taotrace/event"
	"github.com/flamewire/taotrace/filter"
)

type recordingHandler struct {
	Base
	events []event.ChainEvent
	errs   []error
}

func (h *recordingHandler) HandleEvent(_ context.Context, ev event.ChainEvent, _ *event.Context) error {
	h.events = append(h.events, ev)
	return nil
}

func (h *recordingHandler) HandleError(_ context.Context, err error, _ *event.Context) {
	h.errs = append(h.errs, err)
}

func TestConditionalSkipsOnFalsePredicate(t *testing.T) {
	child := &recordingHandler{Base: Base{NameValue: "child"}}
	cond := NewConditional(child, func(ev event.ChainEvent) bool {
		return ev.VariantName == "Transfer"
	})

	blockCtx := event.NewContext(7, event.Hash{})
	events := []event.ChainEvent{
		{PalletName: "Balances", VariantName: "Deposit", Index: 0},
		{PalletName: "Balances", VariantName: "Transfer", Index: 1},
	}

	for _, ev := range events {
		if err := cond.HandleEvent(context.Background(), ev, blockCtx); err != nil {
			t.Fatalf("HandleEvent: %v", err)
		}
	}

	if len(child.events) != 1 || child.events[0].VariantName != "Transfer" {
		t.Fatalf("expected exactly one delegated Transfer event, got %+v", child.events)
	}
}

func TestConditionalEventFilterDelegates(t *testing.T) {
	child := &recordingHandler{Base: Base{NameValue: "child", FilterValue: filter.Pallet("Balances")}}
	cond := NewConditional(child, func(event.ChainEvent) bool { return true })

	if cond.EventFilter().String() != filter.Pallet("Balances").String() {
		t.Fatalf("expected delegated filter, got %v", cond.EventFilter())
	}
}
