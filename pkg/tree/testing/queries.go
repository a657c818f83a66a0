package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/tree"
)

// RunQueryTests executes search and recency query tests.
func (suite *StoreTestSuite) RunQueryTests(t *testing.T) {
	t.Run("SearchByName", suite.testSearchByName)
	t.Run("SearchCaseInsensitive", suite.testSearchCaseInsensitive)
	t.Run("SearchExcludesTrashed", suite.testSearchExcludesTrashed)
	t.Run("SearchIncludesSharedNodes", suite.testSearchIncludesSharedNodes)
	t.Run("SearchPagination", suite.testSearchPagination)
	t.Run("RecentFiles", suite.testRecentFiles)
}

func (suite *StoreTestSuite) testSearchByName(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	NewTestFile(t, store, user, user.RootNodeID, "quarterly-report.pdf", 1)
	NewTestFile(t, store, user, user.RootNodeID, "holiday-photos.zip", 1)
	NewTestFolder(t, store, user, user.RootNodeID, "reports")

	err := store.View(context.Background(), func(tx tree.Tx) error {
		results, err := tx.SearchNodes(user.ID, "report", 50, 0)
		if err != nil {
			return err
		}
		require.Len(t, results, 2)
		for _, n := range results {
			require.Contains(t, n.Name, "report")
		}
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testSearchCaseInsensitive(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	NewTestFile(t, store, user, user.RootNodeID, "Meeting-Notes.txt", 1)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		results, err := tx.SearchNodes(user.ID, "meeting", 50, 0)
		if err != nil {
			return err
		}
		require.Len(t, results, 1)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testSearchExcludesTrashed(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	file := NewTestFile(t, store, user, user.RootNodeID, "findme.txt", 1)

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

	err = store.View(context.Background(), func(tx tree.Tx) error {
		results, err := tx.SearchNodes(user.ID, "findme", 50, 0)
		if err != nil {
			return err
		}
		require.Empty(t, results)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testSearchIncludesSharedNodes(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	owner := NewTestUser(t, store, "owner@example.com")
	grantee := NewTestUser(t, store, "grantee@example.com")
	shared := NewTestFile(t, store, owner, owner.RootNodeID, "shared-plan.doc", 1)
	NewTestFile(t, store, owner, owner.RootNodeID, "private-plan.doc", 1)

	putGrant(t, store, shared.ID, grantee.ID, tree.LevelView)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		results, err := tx.SearchNodes(grantee.ID, "plan", 50, 0)
		if err != nil {
			return err
		}
		require.Len(t, results, 1)
		require.Equal(t, shared.ID, results[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testSearchPagination(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	base := time.Now()
	for i := 0; i < 5; i++ {
		file := &tree.Node{
			ID:        tree.NewNodeID(),
			Name:      "page.txt",
			OwnerID:   user.ID,
			ParentID:  user.RootNodeID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		err := store.Update(context.Background(), func(tx tree.Tx) error {
			return tx.PutNode(file)
		})
		require.NoError(t, err)
	}

	err := store.View(context.Background(), func(tx tree.Tx) error {
		first, err := tx.SearchNodes(user.ID, "page", 2, 0)
		if err != nil {
			return err
		}
		require.Len(t, first, 2)

		second, err := tx.SearchNodes(user.ID, "page", 2, 2)
		if err != nil {
			return err
		}
		require.Len(t, second, 2)
		require.NotEqual(t, first[0].ID, second[0].ID)

		// Newest first: the first page is strictly more recent.
		require.True(t, first[0].CreatedAt.After(second[0].CreatedAt) ||
			first[0].CreatedAt.Equal(second[0].CreatedAt))

		tail, err := tx.SearchNodes(user.ID, "page", 2, 4)
		if err != nil {
			return err
		}
		require.Len(t, tail, 1)

		empty, err := tx.SearchNodes(user.ID, "page", 2, 10)
		if err != nil {
			return err
		}
		require.Empty(t, empty)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testRecentFiles(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	user := NewTestUser(t, store, "alice@example.com")
	other := NewTestUser(t, store, "other@example.com")

	base := time.Now()
	var newest tree.NodeID
	for i := 0; i < 3; i++ {
		file := &tree.Node{
			ID:        tree.NewNodeID(),
			Name:      "recent.txt",
			OwnerID:   user.ID,
			ParentID:  user.RootNodeID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		newest = file.ID
		err := store.Update(context.Background(), func(tx tree.Tx) error {
			return tx.PutNode(file)
		})
		require.NoError(t, err)
	}

	// Directories and other users' files never show up.
	NewTestFolder(t, store, user, user.RootNodeID, "folder")
	NewTestFile(t, store, other, other.RootNodeID, "theirs.txt", 1)

	err := store.View(context.Background(), func(tx tree.Tx) error {
		files, err := tx.RecentFiles(user.ID, 2)
		if err != nil {
			return err
		}
		require.Len(t, files, 2)
		require.Equal(t, newest, files[0].ID)
		for _, f := range files {
			require.False(t, f.IsDirectory)
			require.Equal(t, user.ID, f.OwnerID)
		}
		return nil
	})
	require.NoError(t, err)
}
