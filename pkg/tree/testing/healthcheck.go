package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// RunHealthcheckTests executes health probe tests.
func (suite *StoreTestSuite) RunHealthcheckTests(t *testing.T) {
	t.Run("Healthy", suite.testHealthcheckHealthy)
	t.Run("CancelledContext", suite.testHealthcheckCancelledContext)
}

func (suite *StoreTestSuite) testHealthcheckHealthy(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	require.NoError(t, store.Healthcheck(context.Background()))
}

func (suite *StoreTestSuite) testHealthcheckCancelledContext(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Healthcheck(ctx), context.Canceled)
}
