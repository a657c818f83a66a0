package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/engine"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Share inheritance: a grant on a folder covers everything beneath it,
// and the grant's level decides what the grantee can do there.

func TestViewGrantAllowsListingButNotEditing(t *testing.T) {
	f := newFixture(t, engine.Options{})
	owner := f.register(t, "owner@example.com")
	viewer := f.register(t, "viewer@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, owner.ID, owner.RootNodeID, "project")
	file := f.upload(t, owner.ID, folder.ID, "plan.txt", 4)

	_, err := f.engine.Share(ctx, owner.ID, folder.ID, "viewer@example.com", tree.LevelView)
	require.NoError(t, err)

	// Listing the shared folder succeeds.
	children, err := f.engine.List(ctx, viewer.ID, folder.ID, "")
	require.NoError(t, err)
	require.Len(t, children, 1)

	// Downloading a file inside it succeeds: the folder grant is
	// inherited by descendants.
	_, err = f.engine.Download(ctx, viewer.ID, file.ID, "")
	require.NoError(t, err)

	// Renaming inside the shared folder needs edit.
	_, err = f.engine.Rename(ctx, viewer.ID, file.ID, "renamed.txt", "")
	requireCode(t, tree.ErrForbidden, err)
}

func TestEditGrantAllowsStructuralChanges(t *testing.T) {
	f := newFixture(t, engine.Options{})
	owner := f.register(t, "owner@example.com")
	editor := f.register(t, "editor@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, owner.ID, owner.RootNodeID, "project")
	file := f.upload(t, owner.ID, folder.ID, "plan.txt", 4)

	_, err := f.engine.Share(ctx, owner.ID, folder.ID, "editor@example.com", tree.LevelEdit)
	require.NoError(t, err)

	renamed, err := f.engine.Rename(ctx, editor.ID, file.ID, "renamed.txt", "")
	require.NoError(t, err)
	require.Equal(t, "renamed.txt", renamed.Name)

	// Edit implies view.
	_, err = f.engine.List(ctx, editor.ID, folder.ID, "")
	require.NoError(t, err)
}

func TestNearestGrantWins(t *testing.T) {
	f := newFixture(t, engine.Options{})
	owner := f.register(t, "owner@example.com")
	grantee := f.register(t, "grantee@example.com")
	ctx := context.Background()

	outer := f.mkdir(t, owner.ID, owner.RootNodeID, "outer")
	inner := f.mkdir(t, owner.ID, outer.ID, "inner")
	file := f.upload(t, owner.ID, inner.ID, "file.txt", 1)

	// Edit on the outer folder, view on the inner one. The inner grant
	// is nearer to the file, so it decides: view only.
	_, err := f.engine.Share(ctx, owner.ID, outer.ID, "grantee@example.com", tree.LevelEdit)
	require.NoError(t, err)
	_, err = f.engine.Share(ctx, owner.ID, inner.ID, "grantee@example.com", tree.LevelView)
	require.NoError(t, err)

	_, err = f.engine.Rename(ctx, grantee.ID, file.ID, "renamed.txt", "")
	requireCode(t, tree.ErrForbidden, err)

	_, err = f.engine.Download(ctx, grantee.ID, file.ID, "")
	require.NoError(t, err)

	// Directly inside outer the edit grant still applies.
	_, err = f.engine.Mkdir(ctx, grantee.ID, outer.ID, "made-by-grantee", "")
	require.NoError(t, err)
}

func TestOwnerAlwaysHasEditRegardlessOfGrants(t *testing.T) {
	f := newFixture(t, engine.Options{})
	owner := f.register(t, "owner@example.com")
	other := f.register(t, "other@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, owner.ID, owner.RootNodeID, "mine")
	file := f.upload(t, owner.ID, folder.ID, "file.txt", 1)

	// A view grant to someone else never dilutes the owner's rights.
	_, err := f.engine.Share(ctx, owner.ID, folder.ID, "other@example.com", tree.LevelView)
	require.NoError(t, err)
	_ = other

	_, err = f.engine.Rename(ctx, owner.ID, file.ID, "renamed.txt", "")
	require.NoError(t, err)
}

func TestSharesDoNotGrantDeleteRights(t *testing.T) {
	f := newFixture(t, engine.Options{})
	owner := f.register(t, "owner@example.com")
	editor := f.register(t, "editor@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, owner.ID, owner.RootNodeID, "shared")
	file := f.upload(t, owner.ID, folder.ID, "file.txt", 1)

	_, err := f.engine.Share(ctx, owner.ID, folder.ID, "editor@example.com", tree.LevelEdit)
	require.NoError(t, err)

	// Trash, restore, and purge stay owner-only even at edit level.
	err = f.engine.Trash(ctx, editor.ID, file.ID, "")
	requireCode(t, tree.ErrForbidden, err)

	require.NoError(t, f.engine.Trash(ctx, owner.ID, file.ID, ""))
	err = f.engine.Restore(ctx, editor.ID, file.ID)
	requireCode(t, tree.ErrForbidden, err)
	err = f.engine.Purge(ctx, editor.ID, file.ID)
	requireCode(t, tree.ErrForbidden, err)
}
