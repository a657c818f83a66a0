package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/tree"
)

// RunNodeTests executes all node storage tests.
func (suite *StoreTestSuite) RunNodeTests(t *testing.T) {
	t.Run("GetPut", suite.testNodeGetPut)
	t.Run("GetNotFound", suite.testNodeGetNotFound)
	t.Run("Update", suite.testNodeUpdate)
	t.Run("Delete", suite.testNodeDelete)
	t.Run("Children", suite.testNodeChildren)
	t.Run("ChildrenIncludeTrashed", suite.testNodeChildrenIncludeTrashed)
	t.Run("Reparent", suite.testNodeReparent)
	t.Run("LiveChild", suite.testNodeLiveChild)
	t.Run("LiveChildSkipsTrashed", suite.testNodeLiveChildSkipsTrashed)
}

func (suite *StoreTestSuite) testNodeGetPut(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	file := NewTestFile(t, store, user, user.RootNodeID, "report.pdf", 2048)

	got := GetNode(t, store, file.ID)
	require.Equal(t, file.ID, got.ID)
	require.Equal(t, "report.pdf", got.Name)
	require.Equal(t, int64(2048), got.SizeBytes)
	require.Equal(t, user.ID, got.OwnerID)
	require.False(t, got.IsDirectory)
}

func (suite *StoreTestSuite) testNodeGetNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	err := store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetNode("missing")
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)
}

func (suite *StoreTestSuite) testNodeUpdate(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	file := NewTestFile(t, store, user, user.RootNodeID, "draft.txt", 10)

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		n, err := tx.GetNode(file.ID)
		if err != nil {
			return err
		}
		n.Name = "final.txt"
		n.SizeBytes = 20
		return tx.PutNode(n)
	})
	require.NoError(t, err)

	got := GetNode(t, store, file.ID)
	require.Equal(t, "final.txt", got.Name)
	require.Equal(t, int64(20), got.SizeBytes)
}

func (suite *StoreTestSuite) testNodeDelete(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	file := NewTestFile(t, store, user, user.RootNodeID, "gone.txt", 10)

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		return tx.DeleteNode(file.ID)
	})
	require.NoError(t, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.GetNode(file.ID)
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)

	// The children index must not resurface the deleted node.
	err = store.View(context.Background(), func(tx tree.Tx) error {
		children, err := tx.Children(user.RootNodeID)
		if err != nil {
			return err
		}
		for _, child := range children {
			require.NotEqual(t, file.ID, child.ID)
		}
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testNodeChildren(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	folder := NewTestFolder(t, store, user, user.RootNodeID, "docs")
	a := NewTestFile(t, store, user, folder.ID, "a.txt", 1)
	b := NewTestFile(t, store, user, folder.ID, "b.txt", 2)
	NewTestFile(t, store, user, user.RootNodeID, "elsewhere.txt", 3)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		children, err := tx.Children(folder.ID)
		if err != nil {
			return err
		}
		require.Len(t, children, 2)

		ids := map[tree.NodeID]bool{}
		for _, child := range children {
			ids[child.ID] = true
		}
		require.True(t, ids[a.ID])
		require.True(t, ids[b.ID])
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testNodeChildrenIncludeTrashed(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	file := NewTestFile(t, store, user, user.RootNodeID, "trashed.txt", 1)

	now := time.Now()
	err := store.Update(context.Background(), func(tx tree.Tx) error {
		n, err := tx.GetNode(file.ID)
		if err != nil {
			return err
		}
		n.Deleted = true
		n.DeletedAt = &now
		return tx.PutNode(n)
	})
	require.NoError(t, err)

	// Children is the raw listing: trashed nodes stay visible so recursive
	// operations can reach them.
	err = store.View(context.Background(), func(tx tree.Tx) error {
		children, err := tx.Children(user.RootNodeID)
		if err != nil {
			return err
		}
		found := false
		for _, child := range children {
			if child.ID == file.ID {
				found = true
				require.True(t, child.Deleted)
			}
		}
		require.True(t, found)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testNodeReparent(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	src := NewTestFolder(t, store, user, user.RootNodeID, "src")
	dst := NewTestFolder(t, store, user, user.RootNodeID, "dst")
	file := NewTestFile(t, store, user, src.ID, "moving.txt", 1)

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		n, err := tx.GetNode(file.ID)
		if err != nil {
			return err
		}
		n.ParentID = dst.ID
		return tx.PutNode(n)
	})
	require.NoError(t, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		srcChildren, err := tx.Children(src.ID)
		if err != nil {
			return err
		}
		require.Empty(t, srcChildren)

		dstChildren, err := tx.Children(dst.ID)
		if err != nil {
			return err
		}
		require.Len(t, dstChildren, 1)
		require.Equal(t, file.ID, dstChildren[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testNodeLiveChild(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	file := NewTestFile(t, store, user, user.RootNodeID, "unique.txt", 1)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		got, err := tx.LiveChild(user.ID, user.RootNodeID, "unique.txt")
		if err != nil {
			return err
		}
		require.Equal(t, file.ID, got.ID)
		return nil
	})
	require.NoError(t, err)

	err = store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.LiveChild(user.ID, user.RootNodeID, "absent.txt")
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)
}

func (suite *StoreTestSuite) testNodeLiveChildSkipsTrashed(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	file := NewTestFile(t, store, user, user.RootNodeID, "notes.txt", 1)

	now := time.Now()
	err := store.Update(context.Background(), func(tx tree.Tx) error {
		n, err := tx.GetNode(file.ID)
		if err != nil {
			return err
		}
		n.Deleted = true
		n.DeletedAt = &now
		return tx.PutNode(n)
	})
	require.NoError(t, err)

	// A trashed node frees its name for reuse.
	err = store.View(context.Background(), func(tx tree.Tx) error {
		_, err := tx.LiveChild(user.ID, user.RootNodeID, "notes.txt")
		return err
	})
	AssertErrorCode(t, tree.ErrNotFound, err)
}
