package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/tree"
)

// RunGrantTests executes all share grant storage tests.
func (suite *StoreTestSuite) RunGrantTests(t *testing.T) {
	t.Run("GetPut", suite.testGrantGetPut)
	t.Run("GetNotFound", suite.testGrantGetNotFound)
	t.Run("Upsert", suite.testGrantUpsert)
	t.Run("DeleteNodeGrants", suite.testGrantDeleteNodeGrants)
	t.Run("UserGrants", suite.testGrantUserGrants)
}

func putGrant(t *testing.T, store tree.Store, node tree.NodeID, grantee tree.UserID, level tree.PermissionLevel) {
	t.Helper()

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		return tx.PutGrant(&tree.ShareGrant{
			NodeID:    node,
			GranteeID: grantee,
			Level:     level,
			CreatedAt: time.Now(),
		})
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testGrantGetPut(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	owner := NewTestUser(t, store, "owner@example.com")
	grantee := NewTestUser(t, store, "grantee@example.com")
	folder := NewTestFolder(t, store, owner, owner.RootNodeID, "shared")

	putGrant(t, store, folder.ID, grantee.ID, tree.LevelView)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		g, err := tx.GetGrant(folder.ID, grantee.ID)
		if err != nil {
			return err
		}
		require.Equal(t, tree.LevelView, g.Level)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testGrantGetNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	err := store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetGrant("node", "user")
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)
}

func (suite *StoreTestSuite) testGrantUpsert(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	owner := NewTestUser(t, store, "owner@example.com")
	grantee := NewTestUser(t, store, "grantee@example.com")
	folder := NewTestFolder(t, store, owner, owner.RootNodeID, "shared")

	putGrant(t, store, folder.ID, grantee.ID, tree.LevelView)
	putGrant(t, store, folder.ID, grantee.ID, tree.LevelEdit)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		g, err := tx.GetGrant(folder.ID, grantee.ID)
		if err != nil {
			return err
		}
		require.Equal(t, tree.LevelEdit, g.Level)

		grants, err := tx.UserGrants(grantee.ID)
		if err != nil {
			return err
		}
		require.Len(t, grants, 1)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testGrantDeleteNodeGrants(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	owner := NewTestUser(t, store, "owner@example.com")
	grantee1 := NewTestUser(t, store, "one@example.com")
	grantee2 := NewTestUser(t, store, "two@example.com")
	folder := NewTestFolder(t, store, owner, owner.RootNodeID, "shared")
	other := NewTestFolder(t, store, owner, owner.RootNodeID, "other")

	putGrant(t, store, folder.ID, grantee1.ID, tree.LevelView)
	putGrant(t, store, folder.ID, grantee2.ID, tree.LevelEdit)
	putGrant(t, store, other.ID, grantee1.ID, tree.LevelView)

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		return tx.DeleteNodeGrants(folder.ID)
	})
	require.NoError(t, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetGrant(folder.ID, grantee1.ID)
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetGrant(folder.ID, grantee2.ID)
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)

	// Grants on other nodes survive.
	err = store.View(context.Background(), func(tx tree.Tx) error {
		grants, err := tx.UserGrants(grantee1.ID)
		if err != nil {
			return err
		}
		require.Len(t, grants, 1)
		require.Equal(t, other.ID, grants[0].NodeID)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testGrantUserGrants(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	owner := NewTestUser(t, store, "owner@example.com")
	grantee := NewTestUser(t, store, "grantee@example.com")
	bystander := NewTestUser(t, store, "bystander@example.com")
	a := NewTestFolder(t, store, owner, owner.RootNodeID, "a")
	b := NewTestFolder(t, store, owner, owner.RootNodeID, "b")

	putGrant(t, store, a.ID, grantee.ID, tree.LevelView)
	putGrant(t, store, b.ID, grantee.ID, tree.LevelEdit)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		grants, err := tx.UserGrants(grantee.ID)
		if err != nil {
			return err
		}
		require.Len(t, grants, 2)

		empty, err := tx.UserGrants(bystander.ID)
		if err != nil {
			return err
		}
		require.Empty(t, empty)
		return nil
	})
	require.NoError(t, err)
}
