package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/engine"
	"github.com/canopyfs/canopy/pkg/tree"
)

func TestLockGatesOperationsUntilCredentialSupplied(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	vault := f.mkdir(t, user.ID, user.RootNodeID, "vault")
	sub := f.mkdir(t, user.ID, vault.ID, "sub")
	file := f.upload(t, user.ID, sub.ID, "secret.txt", 6)

	require.NoError(t, f.engine.Lock(ctx, user.ID, vault.ID, "pw1"))

	// The stored credential is a hash, never the plaintext.
	locked := f.node(t, vault.ID)
	require.True(t, locked.Locked)
	require.NotEmpty(t, locked.LockCredentialHash)
	require.NotEqual(t, "pw1", locked.LockCredentialHash)

	// The lock gates the owner too; it is independent of permissions.
	_, err := f.engine.List(ctx, user.ID, vault.ID, "")
	requireCode(t, tree.ErrForbidden, err)
	_, err = f.engine.List(ctx, user.ID, sub.ID, "")
	requireCode(t, tree.ErrForbidden, err)
	_, err = f.engine.Download(ctx, user.ID, file.ID, "")
	requireCode(t, tree.ErrForbidden, err)
	_, err = f.engine.Download(ctx, user.ID, file.ID, "wrong")
	requireCode(t, tree.ErrForbidden, err)
	_, err = f.engine.Rename(ctx, user.ID, file.ID, "renamed.txt", "")
	requireCode(t, tree.ErrForbidden, err)
	_, err = f.engine.Upload(ctx, user.ID, sub.ID, "new.txt",
		"text/plain", 1, strings.NewReader("x"), "")
	requireCode(t, tree.ErrForbidden, err)

	// With the right credential everything works.
	children, err := f.engine.List(ctx, user.ID, vault.ID, "pw1")
	require.NoError(t, err)
	require.Len(t, children, 1)
	_, err = f.engine.Download(ctx, user.ID, file.ID, "pw1")
	require.NoError(t, err)
	_, err = f.engine.Rename(ctx, user.ID, file.ID, "renamed.txt", "pw1")
	require.NoError(t, err)
}

func TestLockDoesNotGateSiblings(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	vault := f.mkdir(t, user.ID, user.RootNodeID, "vault")
	open := f.mkdir(t, user.ID, user.RootNodeID, "open")
	require.NoError(t, f.engine.Lock(ctx, user.ID, vault.ID, "pw1"))

	_, err := f.engine.List(ctx, user.ID, open.ID, "")
	require.NoError(t, err)

	// Listing the root shows the locked folder without opening it.
	children, err := f.engine.List(ctx, user.ID, user.RootNodeID, "")
	require.NoError(t, err)
	require.Len(t, children, 2)
}

func TestMoveAcrossLockBoundaries(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	vault := f.mkdir(t, user.ID, user.RootNodeID, "vault")
	open := f.mkdir(t, user.ID, user.RootNodeID, "open")
	inside := f.upload(t, user.ID, vault.ID, "inside.txt", 1)
	outside := f.upload(t, user.ID, open.ID, "outside.txt", 1)

	require.NoError(t, f.engine.Lock(ctx, user.ID, vault.ID, "pw1"))

	// Moving out of the locked subtree requires the credential.
	_, err := f.engine.Move(ctx, user.ID, inside.ID, open.ID, "")
	requireCode(t, tree.ErrForbidden, err)
	_, err = f.engine.Move(ctx, user.ID, inside.ID, open.ID, "pw1")
	require.NoError(t, err)

	// So does moving in.
	_, err = f.engine.Move(ctx, user.ID, outside.ID, vault.ID, "")
	requireCode(t, tree.ErrForbidden, err)
	_, err = f.engine.Move(ctx, user.ID, outside.ID, vault.ID, "pw1")
	require.NoError(t, err)
}

func TestLockValidation(t *testing.T) {
	f := newFixture(t, engine.Options{})
	owner := f.register(t, "owner@example.com")
	other := f.register(t, "other@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, owner.ID, owner.RootNodeID, "folder")
	file := f.upload(t, owner.ID, owner.RootNodeID, "file.txt", 1)

	err := f.engine.Lock(ctx, owner.ID, folder.ID, "")
	requireCode(t, tree.ErrInvalidArgument, err)

	err = f.engine.Lock(ctx, owner.ID, file.ID, "pw")
	requireCode(t, tree.ErrInvalidArgument, err)

	err = f.engine.Lock(ctx, other.ID, folder.ID, "pw")
	requireCode(t, tree.ErrForbidden, err)
}

func TestUnlock(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	vault := f.mkdir(t, user.ID, user.RootNodeID, "vault")
	require.NoError(t, f.engine.Lock(ctx, user.ID, vault.ID, "pw1"))

	err := f.engine.Unlock(ctx, user.ID, vault.ID, "wrong")
	requireCode(t, tree.ErrForbidden, err)

	require.NoError(t, f.engine.Unlock(ctx, user.ID, vault.ID, "pw1"))

	unlocked := f.node(t, vault.ID)
	require.False(t, unlocked.Locked)
	require.Empty(t, unlocked.LockCredentialHash)

	_, err = f.engine.List(ctx, user.ID, vault.ID, "")
	require.NoError(t, err)
}
