package checkpoint_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/flamewire/taotrace/checkpoint"
	"github.com/flamewire/taotrace/checkpoint/checkpointtest"
)

func TestFileCompliance(t *testing.T) {
	n := 0
	checkpointtest.RunComplianceSuite(t, func() checkpoint.Store {
		n++
		dir := t.TempDir()
		return checkpoint.NewFile(filepath.Join(dir, fmt.Sprintf("checkpoint-%d.json", n)))
	})
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	first := checkpoint.NewFile(path)
	if err := first.Save(context.Background(), 15); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := checkpoint.NewFile(path)
	block, ok, err := second.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok || block != 15 {
		t.Fatalf("got (%d, %v), want (15, true)", block, ok)
	}
}
