package testing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/tree"
)

// RunTransactionTests executes atomicity and rollback tests.
func (suite *StoreTestSuite) RunTransactionTests(t *testing.T) {
	t.Run("UpdateRollsBackOnError", suite.testUpdateRollsBackOnError)
	t.Run("UpdateCommitsAllWrites", suite.testUpdateCommitsAllWrites)
	t.Run("ViewRejectsWrites", suite.testViewRejectsWrites)
	t.Run("CancelledContext", suite.testCancelledContext)
	t.Run("ConcurrentQuotaUpdates", suite.testConcurrentQuotaUpdates)
}

func (suite *StoreTestSuite) testUpdateRollsBackOnError(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")

	boom := errors.New("boom")
	err := store.Update(context.Background(), func(tx tree.Tx) error {
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		u.StorageUsed = 9999
		if err := tx.PutUser(u); err != nil {
			return err
		}
		if err := tx.PutNode(&tree.Node{
			ID:       tree.NewNodeID(),
			Name:     "orphan.txt",
			OwnerID:  user.ID,
			ParentID: user.RootNodeID,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Neither write survives the failed transaction.
	err = store.View(context.Background(), func(tx tree.Tx) error {
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		require.Equal(t, int64(0), u.StorageUsed)

		children, err := tx.Children(user.RootNodeID)
		if err != nil {
			return err
		}
		require.Empty(t, children)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testUpdateCommitsAllWrites(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")

	fileID := tree.NewNodeID()
	err := store.Update(context.Background(), func(tx tree.Tx) error {
		if err := tx.PutNode(&tree.Node{
			ID:       fileID,
			Name:     "file.txt",
			OwnerID:  user.ID,
			ParentID: user.RootNodeID,
		}); err != nil {
			return err
		}
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		u.StorageUsed = 100
		return tx.PutUser(u)
	})
	require.NoError(t, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		if _, err := tx.GetNode(fileID); err != nil {
			return err
		}
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		require.Equal(t, int64(100), u.StorageUsed)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testViewRejectsWrites(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")

	err := store.View(context.Background(), func(tx tree.Tx) error {
		return tx.PutNode(&tree.Node{
			ID:       tree.NewNodeID(),
			Name:     "nope.txt",
			OwnerID:  user.ID,
			ParentID: user.RootNodeID,
		})
	})
	require.Error(t, err)
}

func (suite *StoreTestSuite) testCancelledContext(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Update(ctx, func(tx tree.Tx) error {
		t.Fatal("transaction function should not run with cancelled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

// Concurrent Update calls racing on one user's quota counter must
// serialize: every successful increment lands exactly once and the
// counter never drifts past the allotment. Stores may reject contended
// transactions (optimistic conflict), but must never lose a committed
// write.
func (suite *StoreTestSuite) testConcurrentQuotaUpdates(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		u.StorageAllotted = 100
		return tx.PutUser(u)
	})
	require.NoError(t, err)

	const workers = 20
	const step = 100 / (workers / 2) // half the workers fit under the cap

	errNoHeadroom := errors.New("no headroom")
	results := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.Update(context.Background(), func(tx tree.Tx) error {
				u, err := tx.GetUser(user.ID)
				if err != nil {
					return err
				}
				if u.StorageUsed+step > u.StorageAllotted {
					return errNoHeadroom
				}
				u.StorageUsed += step
				return tx.PutUser(u)
			})
		}(i)
	}
	wg.Wait()

	var committed int64
	for _, err := range results {
		if err == nil {
			committed += step
		}
	}

	err = store.View(context.Background(), func(tx tree.Tx) error {
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		require.Equal(t, committed, u.StorageUsed)
		require.LessOrEqual(t, u.StorageUsed, u.StorageAllotted)
		return nil
	})
	require.NoError(t, err)
}
