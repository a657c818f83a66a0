package testing

import (
	"testing"

	"github.com/canopyfs/canopy/pkg/tree"
)

// StoreTestSuite is a comprehensive test suite for tree.Store implementations.
// It tests the interface contract, not implementation details, making it
// reusable across different implementations (memory, badger, etc.).
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh Store instance for
	// each test. This ensures test isolation.
	NewStore func() tree.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Nodes", suite.RunNodeTests)
	test.Run("Users", suite.RunUserTests)
	test.Run("Grants", suite.RunGrantTests)
	test.Run("Queries", suite.RunQueryTests)
	test.Run("Transactions", suite.RunTransactionTests)
	test.Run("Healthcheck", suite.RunHealthcheckTests)
}
