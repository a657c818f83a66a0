package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/tree"
)

// NewTestUser creates a user with a root folder for testing and persists both.
func NewTestUser(t *testing.T, store tree.Store, email string) *tree.User {
	t.Helper()

	root := &tree.Node{
		ID:          tree.NewNodeID(),
		Name:        "root",
		IsDirectory: true,
		CreatedAt:   time.Now(),
	}
	user := &tree.User{
		ID:              tree.NewUserID(),
		Email:           email,
		CredentialHash:  "test-hash",
		StorageAllotted: 5 * 1024 * 1024 * 1024,
		RootNodeID:      root.ID,
	}
	root.OwnerID = user.ID

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		if err := tx.PutUser(user); err != nil {
			return err
		}
		return tx.PutNode(root)
	})
	require.NoError(t, err)

	return user
}

// NewTestFolder creates a directory node under the given parent and persists it.
func NewTestFolder(t *testing.T, store tree.Store, owner *tree.User, parent tree.NodeID, name string) *tree.Node {
	t.Helper()

	folder := &tree.Node{
		ID:          tree.NewNodeID(),
		Name:        name,
		IsDirectory: true,
		OwnerID:     owner.ID,
		ParentID:    parent,
		CreatedAt:   time.Now(),
	}

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		return tx.PutNode(folder)
	})
	require.NoError(t, err)

	return folder
}

// NewTestFile creates a file node under the given parent and persists it.
func NewTestFile(t *testing.T, store tree.Store, owner *tree.User, parent tree.NodeID, name string, size int64) *tree.Node {
	t.Helper()

	file := &tree.Node{
		ID:         tree.NewNodeID(),
		Name:       name,
		SizeBytes:  size,
		MimeType:   "application/octet-stream",
		StorageRef: "user-" + string(owner.ID) + "/" + name,
		OwnerID:    owner.ID,
		ParentID:   parent,
		CreatedAt:  time.Now(),
	}

	err := store.Update(context.Background(), func(tx tree.Tx) error {
		return tx.PutNode(file)
	})
	require.NoError(t, err)

	return file
}

// GetNode fetches a node in a read transaction, failing the test on error.
func GetNode(t *testing.T, store tree.Store, id tree.NodeID) *tree.Node {
	t.Helper()

	var node *tree.Node
	err := store.View(context.Background(), func(tx tree.Tx) error {
		var err error
		node, err = tx.GetNode(id)
		return err
	})
	require.NoError(t, err)

	return node
}

// AssertErrorCode verifies that err carries the expected tree error code.
func AssertErrorCode(t *testing.T, expected tree.ErrorCode, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, tree.IsCode(err, expected),
		"expected error code %v, got: %v", expected, err)
}
