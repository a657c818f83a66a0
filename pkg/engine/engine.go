// Package engine implements the file-tree operations of Canopy: account
// registration, upload and directory creation, listing and download,
// rename and move, trash/restore/purge with quota accounting, folder
// locks, and share grants.
//
// Every operation runs as a single transaction against the tree store, so
// permission checks, structural changes, and quota adjustments commit
// together or not at all. Access control, lock gating, and quota
// arithmetic live in access.go, lockgate.go, and quota.go; the operation
// entry points are spread one file per operation family.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/canopyfs/canopy/pkg/blob"
	"github.com/canopyfs/canopy/pkg/credential"
	"github.com/canopyfs/canopy/pkg/tree"
)

const (
	// DefaultStorageAllotment is the quota granted to new accounts when
	// the configuration does not override it.
	DefaultStorageAllotment int64 = 5 * 1024 * 1024 * 1024 // 5 GB

	// DefaultDownloadTTL is how long presigned download links stay valid
	// when the configuration does not override it.
	DefaultDownloadTTL = 10 * time.Minute

	// RootFolderName is the name given to every user's root directory.
	RootFolderName = "root"
)

// Options tunes engine behavior.
type Options struct {
	// StorageAllotment is the quota in bytes for newly registered users.
	StorageAllotment int64

	// DownloadTTL is the validity window for presigned download URLs.
	DownloadTTL time.Duration
}

// Engine coordinates the tree store, the blob store, and the credential
// hasher. It is safe for concurrent use; all mutable state lives in the
// stores.
type Engine struct {
	store  tree.Store
	blobs  blob.Store
	hasher credential.Hasher
	opts   Options
}

// New creates an engine. Zero option fields fall back to the defaults.
func New(store tree.Store, blobs blob.Store, hasher credential.Hasher, opts Options) *Engine {
	if opts.StorageAllotment <= 0 {
		opts.StorageAllotment = DefaultStorageAllotment
	}
	if opts.DownloadTTL <= 0 {
		opts.DownloadTTL = DefaultDownloadTTL
	}

	return &Engine{
		store:  store,
		blobs:  blobs,
		hasher: hasher,
		opts:   opts,
	}
}

// blobKey builds the blob-store key for a new upload. The owner prefix
// keeps one user's objects together; the random component prevents
// collisions when the same name is uploaded repeatedly.
func blobKey(owner tree.UserID, name string) string {
	return fmt.Sprintf("user-%s/%s-%s", owner, uuid.NewString(), name)
}

// getOwnedNode loads a node and verifies the actor owns it. Used by the
// owner-only operations (trash, restore, purge, lock, share).
func getOwnedNode(tx tree.Tx, actor tree.UserID, id tree.NodeID) (*tree.Node, error) {
	node, err := tx.GetNode(id)
	if err != nil {
		return nil, err
	}
	if node.OwnerID != actor {
		return nil, &tree.TreeError{
			Code:    tree.ErrForbidden,
			Message: "only the owner may perform this operation",
			Path:    node.Name,
		}
	}
	return node, nil
}
