package memory_test

import (
	"testing"

	"github.com/canopyfs/canopy/pkg/tree"
	"github.com/canopyfs/canopy/pkg/tree/memory"
	treetesting "github.com/canopyfs/canopy/pkg/tree/testing"
)

func TestMemoryStore(t *testing.T) {
	suite := &treetesting.StoreTestSuite{
		NewStore: func() tree.Store {
			return memory.NewMemoryStore()
		},
	}
	suite.Run(t)
}
