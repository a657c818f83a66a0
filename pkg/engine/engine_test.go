package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/blob/memory"
	"github.com/canopyfs/canopy/pkg/credential"
	"github.com/canopyfs/canopy/pkg/engine"
	"github.com/canopyfs/canopy/pkg/tree"
	treememory "github.com/canopyfs/canopy/pkg/tree/memory"
	treetesting "github.com/canopyfs/canopy/pkg/tree/testing"
)

// testFixture bundles an engine with the stores behind it so tests can
// inspect state directly.
type testFixture struct {
	engine *engine.Engine
	store  tree.Store
	blobs  *memory.MemoryBlobStore
}

func newFixture(t *testing.T, opts engine.Options) *testFixture {
	t.Helper()

	store := treememory.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	blobs := memory.NewMemoryBlobStore()
	hasher := credential.NewBcryptHasher(4)

	return &testFixture{
		engine: engine.New(store, blobs, hasher, opts),
		store:  store,
		blobs:  blobs,
	}
}

func (f *testFixture) register(t *testing.T, email string) *tree.User {
	t.Helper()

	user, err := f.engine.Register(context.Background(), email, "password")
	require.NoError(t, err)
	return user
}

func (f *testFixture) upload(t *testing.T, actor tree.UserID, parent tree.NodeID, name string, size int64) *tree.Node {
	t.Helper()

	content := strings.Repeat("x", int(size))
	node, err := f.engine.Upload(context.Background(), actor, parent, name,
		"text/plain", size, strings.NewReader(content), "")
	require.NoError(t, err)
	return node
}

func (f *testFixture) mkdir(t *testing.T, actor tree.UserID, parent tree.NodeID, name string) *tree.Node {
	t.Helper()

	node, err := f.engine.Mkdir(context.Background(), actor, parent, name, "")
	require.NoError(t, err)
	return node
}

func (f *testFixture) storageUsed(t *testing.T, userID tree.UserID) int64 {
	t.Helper()

	var used int64
	err := f.store.View(context.Background(), func(tx tree.Tx) error {
		user, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		used = user.StorageUsed
		return nil
	})
	require.NoError(t, err)
	return used
}

func (f *testFixture) node(t *testing.T, id tree.NodeID) *tree.Node {
	t.Helper()
	return treetesting.GetNode(t, f.store, id)
}

func requireCode(t *testing.T, expected tree.ErrorCode, err error) {
	t.Helper()
	treetesting.AssertErrorCode(t, expected, err)
}
