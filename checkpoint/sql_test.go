package checkpoint_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/flamewire/taotrace/checkpoint"
	"github.com/flamewire/taotrace/checkpoint/checkpointtest"
)

func TestSQLiteCompliance(t *testing.T) {
	checkpointtest.RunComplianceSuite(t, func() checkpoint.Store {
		dir, err := os.MkdirTemp("", "taotrace-checkpoint-sqlite-*")
		if err != nil {
			t.Fatalf("MkdirTemp: %v", err)
		}
		t.Cleanup(func() { os.RemoveAll(dir) })

		store, err := checkpoint.OpenSQLite(context.Background(), filepath.Join(dir, "checkpoint.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		return store
	})
}

func TestSQLitePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.db")

	first, err := checkpoint.OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.Save(context.Background(), 23); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := checkpoint.OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite (reopen): %v", err)
	}
	defer second.Close()

	block, ok, err := second.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok || block != 23 {
		t.Fatalf("got (%d, %v), want (23, true)", block, ok)
	}
}
