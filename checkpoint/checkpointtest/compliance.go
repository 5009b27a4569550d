// Package checkpointtest provides a reusable compliance suite that every
// checkpoint.Store implementation is expected to pass.
package checkpointtest

import (
	"context"
	"testing"

	"github.com/flamewire/taotrace/checkpoint"
)

// RunComplianceSuite runs the behavioral contract every Store
// implementation must satisfy against a fresh instance produced by
// factory. Backend test packages call this instead of re-deriving the
// same assertions per implementation.
func RunComplianceSuite(t *testing.T, factory func() checkpoint.Store) {
	t.Helper()

	t.Run("load_before_any_save_reports_absent", func(t *testing.T) {
		store := factory()
		defer store.Close()

		_, ok, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if ok {
			t.Error("expected ok=false before any Save")
		}
	})

	t.Run("save_then_load_round_trips", func(t *testing.T) {
		store := factory()
		defer store.Close()

		if err := store.Save(context.Background(), 42); err != nil {
			t.Fatalf("Save: %v", err)
		}
		block, ok, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !ok || block != 42 {
			t.Errorf("got (%d, %v), want (42, true)", block, ok)
		}
	})

	t.Run("later_save_overwrites_earlier", func(t *testing.T) {
		store := factory()
		defer store.Close()

		for _, block := range []uint64{1, 2, 3} {
			if err := store.Save(context.Background(), block); err != nil {
				t.Fatalf("Save(%d): %v", block, err)
			}
		}
		block, ok, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !ok || block != 3 {
			t.Errorf("got (%d, %v), want (3, true)", block, ok)
		}
	})

	t.Run("close_after_save_succeeds", func(t *testing.T) {
		store := factory()
		if err := store.Save(context.Background(), 7); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})
}
