package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/engine"
	"github.com/canopyfs/canopy/pkg/tree"
)

func TestRegisterCreatesRootFolder(t *testing.T) {
	f := newFixture(t, engine.Options{})

	user := f.register(t, "alice@example.com")
	require.NotEmpty(t, user.RootNodeID)
	require.Equal(t, engine.DefaultStorageAllotment, user.StorageAllotted)
	require.Zero(t, user.StorageUsed)

	root := f.node(t, user.RootNodeID)
	require.True(t, root.IsDirectory)
	require.True(t, root.IsRoot())
	require.Equal(t, user.ID, root.OwnerID)
	require.Equal(t, engine.RootFolderName, root.Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, engine.Options{})
	f.register(t, "alice@example.com")

	_, err := f.engine.Register(context.Background(), "alice@example.com", "other")
	requireCode(t, tree.ErrConflict, err)

	// Email comparison is case-insensitive.
	_, err = f.engine.Register(context.Background(), "ALICE@example.com", "other")
	requireCode(t, tree.ErrConflict, err)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, engine.Options{})

	_, err := f.engine.Register(context.Background(), "  ", "password")
	requireCode(t, tree.ErrInvalidArgument, err)

	_, err = f.engine.Register(context.Background(), "alice@example.com", "")
	requireCode(t, tree.ErrInvalidArgument, err)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t, engine.Options{})
	registered := f.register(t, "alice@example.com")

	user, err := f.engine.Authenticate(context.Background(), "alice@example.com", "password")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	// Password hashes are stored, never the plaintext.
	require.NotEqual(t, "password", user.CredentialHash)

	_, err = f.engine.Authenticate(context.Background(), "alice@example.com", "wrong")
	requireCode(t, tree.ErrForbidden, err)

	// Unknown account fails the same way as a wrong password.
	_, err = f.engine.Authenticate(context.Background(), "nobody@example.com", "password")
	requireCode(t, tree.ErrForbidden, err)
}
