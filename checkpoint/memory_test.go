package checkpoint_test

import (
	"testing"

	"github.com/flamewire/taotrace/checkpoint"
	"github.com/flamewire/taotrace/checkpoint/checkpointtest"
)

func TestMemoryCompliance(t *testing.T) {
	checkpointtest.RunComplianceSuite(t, func() checkpoint.Store {
		return checkpoint.NewMemory()
	})
}
