package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/engine"
	"github.com/canopyfs/canopy/pkg/tree"
)

func TestSearchOwnAndSharedNodes(t *testing.T) {
	f := newFixture(t, engine.Options{})
	owner := f.register(t, "owner@example.com")
	grantee := f.register(t, "grantee@example.com")
	ctx := context.Background()

	f.upload(t, owner.ID, owner.RootNodeID, "Budget-2026.xlsx", 1)
	shared := f.upload(t, owner.ID, owner.RootNodeID, "shared-budget.xlsx", 1)
	f.upload(t, owner.ID, owner.RootNodeID, "unrelated.txt", 1)

	_, err := f.engine.Share(ctx, owner.ID, shared.ID, "grantee@example.com", tree.LevelView)
	require.NoError(t, err)

	// The owner sees both matches, case-insensitively.
	results, err := f.engine.Search(ctx, owner.ID, "budget", 50, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The grantee only sees the node shared with them.
	results, err = f.engine.Search(ctx, grantee.ID, "budget", 50, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, shared.ID, results[0].ID)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")

	_, err := f.engine.Search(context.Background(), user.ID, "   ", 50, 0)
	requireCode(t, tree.ErrInvalidArgument, err)
}

func TestRecentReturnsNewestOwnFilesFirst(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	other := f.register(t, "other@example.com")
	ctx := context.Background()

	f.upload(t, user.ID, user.RootNodeID, "first.txt", 1)
	f.upload(t, user.ID, user.RootNodeID, "second.txt", 1)
	f.mkdir(t, user.ID, user.RootNodeID, "folder")
	f.upload(t, other.ID, other.RootNodeID, "theirs.txt", 1)

	files, err := f.engine.Recent(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, file := range files {
		require.False(t, file.IsDirectory)
		require.Equal(t, user.ID, file.OwnerID)
	}

	trashed := files[0]
	require.NoError(t, f.engine.Trash(ctx, user.ID, trashed.ID, ""))

	files, err = f.engine.Recent(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, files, 1)
}
