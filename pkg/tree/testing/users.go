package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/tree"
)

// RunUserTests executes all user storage tests.
func (suite *StoreTestSuite) RunUserTests(t *testing.T) {
	t.Run("GetPut", suite.testUserGetPut)
	t.Run("GetNotFound", suite.testUserGetNotFound)
	t.Run("GetByEmail", suite.testUserGetByEmail)
	t.Run("GetByEmailNotFound", suite.testUserGetByEmailNotFound)
	t.Run("UpdateQuota", suite.testUserUpdateQuota)
	t.Run("EmailReindex", suite.testUserEmailReindex)
}

func (suite *StoreTestSuite) testUserGetPut(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")

	err := store.View(context.Background(), func(tx tree.Tx) error {
		got, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		require.Equal(t, user.Email, got.Email)
		require.Equal(t, user.RootNodeID, got.RootNodeID)
		require.Equal(t, user.StorageAllotted, got.StorageAllotted)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testUserGetNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	err := store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetUser("missing")
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)
}

func (suite *StoreTestSuite) testUserGetByEmail(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "bob@example.com")

	err := store.View(context.Background(), func(tx tree.Tx) error {
		got, err := tx.GetUserByEmail("bob@example.com")
		if err != nil {
			return err
		}
		require.Equal(t, user.ID, got.ID)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testUserGetByEmailNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	err := store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetUserByEmail("nobody@example.com")
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)
}

func (suite *StoreTestSuite) testUserUpdateQuota(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		u.StorageUsed += 4096
		return tx.PutUser(u)
	})
	require.NoError(t, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		got, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		require.Equal(t, int64(4096), got.StorageUsed)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testUserEmailReindex(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "old@example.com")

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		u, err := tx.GetUser(user.ID)
		if err != nil {
			return err
		}
		u.Email = "new@example.com"
		return tx.PutUser(u)
	})
	require.NoError(t, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		got, err := tx.GetUserByEmail("new@example.com")
		if err != nil {
			return err
		}
		require.Equal(t, user.ID, got.ID)
		return nil
	})
	require.NoError(t, err)

	// The old address must no longer resolve.
	err = store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetUserByEmail("old@example.com")
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)
}
