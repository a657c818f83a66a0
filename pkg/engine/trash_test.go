package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/engine"
	"github.com/canopyfs/canopy/pkg/tree"
)

func TestTrashRestoreRoundTrip(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, user.ID, user.RootNodeID, "folder")
	sub := f.mkdir(t, user.ID, folder.ID, "sub")
	a := f.upload(t, user.ID, folder.ID, "a.txt", 10)
	b := f.upload(t, user.ID, sub.ID, "b.txt", 20)
	usedBefore := f.storageUsed(t, user.ID)
	require.Equal(t, int64(30), usedBefore)

	require.NoError(t, f.engine.Trash(ctx, user.ID, folder.ID, ""))
	require.Equal(t, int64(0), f.storageUsed(t, user.ID))
	for _, id := range []tree.NodeID{folder.ID, sub.ID, a.ID, b.ID} {
		n := f.node(t, id)
		require.True(t, n.Deleted)
		require.NotNil(t, n.DeletedAt)
	}

	require.NoError(t, f.engine.Restore(ctx, user.ID, folder.ID))
	require.Equal(t, usedBefore, f.storageUsed(t, user.ID))
	for _, id := range []tree.NodeID{folder.ID, sub.ID, a.ID, b.ID} {
		n := f.node(t, id)
		require.False(t, n.Deleted)
		require.Nil(t, n.DeletedAt)
	}
}

func TestTrashIsIdempotent(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	file := f.upload(t, user.ID, user.RootNodeID, "file.txt", 10)
	require.NoError(t, f.engine.Trash(ctx, user.ID, file.ID, ""))
	require.Equal(t, int64(0), f.storageUsed(t, user.ID))

	// Re-trashing changes nothing and releases nothing further.
	require.NoError(t, f.engine.Trash(ctx, user.ID, file.ID, ""))
	require.Equal(t, int64(0), f.storageUsed(t, user.ID))
}

func TestTrashNestedAlreadyTrashedContributesZero(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, user.ID, user.RootNodeID, "folder")
	inner := f.upload(t, user.ID, folder.ID, "inner.txt", 10)
	f.upload(t, user.ID, folder.ID, "outer.txt", 5)

	// Trash the inner file first, then the whole folder: the second call
	// must only release the 5 still-active bytes.
	require.NoError(t, f.engine.Trash(ctx, user.ID, inner.ID, ""))
	require.Equal(t, int64(5), f.storageUsed(t, user.ID))

	require.NoError(t, f.engine.Trash(ctx, user.ID, folder.ID, ""))
	require.Equal(t, int64(0), f.storageUsed(t, user.ID))
}

func TestTrashRootRejected(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")

	err := f.engine.Trash(context.Background(), user.ID, user.RootNodeID, "")
	requireCode(t, tree.ErrInvalidArgument, err)
}

func TestRestoreWithTrashedParentRejected(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, user.ID, user.RootNodeID, "folder")
	file := f.upload(t, user.ID, folder.ID, "file.txt", 10)

	require.NoError(t, f.engine.Trash(ctx, user.ID, folder.ID, ""))

	// The child cannot come back while its parent is still trashed.
	err := f.engine.Restore(ctx, user.ID, file.ID)
	requireCode(t, tree.ErrConflict, err)
	require.True(t, f.node(t, file.ID).Deleted)
	require.Equal(t, int64(0), f.storageUsed(t, user.ID))

	// Top-down works: restore the folder, then everything is back.
	require.NoError(t, f.engine.Restore(ctx, user.ID, folder.ID))
	require.False(t, f.node(t, file.ID).Deleted)
}

func TestRestoreActiveNodeRejected(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	file := f.upload(t, user.ID, user.RootNodeID, "file.txt", 1)

	err := f.engine.Restore(context.Background(), user.ID, file.ID)
	requireCode(t, tree.ErrInvalidArgument, err)
}

func TestRestoreQuotaExceeded(t *testing.T) {
	f := newFixture(t, engine.Options{StorageAllotment: 100})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	old := f.upload(t, user.ID, user.RootNodeID, "old.bin", 80)
	require.NoError(t, f.engine.Trash(ctx, user.ID, old.ID, ""))

	// The freed space gets reused, leaving no headroom for the restore.
	f.upload(t, user.ID, user.RootNodeID, "new.bin", 70)

	err := f.engine.Restore(ctx, user.ID, old.ID)
	requireCode(t, tree.ErrQuotaExceeded, err)

	// Nothing flipped, nothing charged.
	require.True(t, f.node(t, old.ID).Deleted)
	require.Equal(t, int64(70), f.storageUsed(t, user.ID))
}

func TestTrashedListing(t *testing.T) {
	f := newFixture(t, engine.Options{})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	folder := f.mkdir(t, user.ID, user.RootNodeID, "folder")
	inner := f.upload(t, user.ID, folder.ID, "inner.txt", 1)
	loose := f.upload(t, user.ID, user.RootNodeID, "loose.txt", 1)

	require.NoError(t, f.engine.Trash(ctx, user.ID, folder.ID, ""))
	require.NoError(t, f.engine.Trash(ctx, user.ID, loose.ID, ""))

	trashed, err := f.engine.Trashed(ctx, user.ID)
	require.NoError(t, err)

	// Only the trash roots appear; the file inside the trashed folder is
	// represented by its folder.
	ids := map[tree.NodeID]bool{}
	for _, n := range trashed {
		ids[n.ID] = true
	}
	require.Len(t, trashed, 2)
	require.True(t, ids[folder.ID])
	require.True(t, ids[loose.ID])
	require.False(t, ids[inner.ID])
}

func TestConcurrentTrashRestoreStaysConsistent(t *testing.T) {
	// Racing trash/restore cycles on one file may fail individually
	// (restore of an active node is InvalidArgument), but the quota
	// counter must always match the file's final state.
	f := newFixture(t, engine.Options{StorageAllotment: 100})
	user := f.register(t, "alice@example.com")
	ctx := context.Background()

	file := f.upload(t, user.ID, user.RootNodeID, "tug.bin", 60)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_ = f.engine.Trash(ctx, user.ID, file.ID, "")
				_ = f.engine.Restore(ctx, user.ID, file.ID)
			}
		}()
	}
	wg.Wait()

	final := f.node(t, file.ID)
	used := f.storageUsed(t, user.ID)
	if final.Deleted {
		require.Equal(t, int64(0), used)
	} else {
		require.Equal(t, int64(60), used)
	}
}
