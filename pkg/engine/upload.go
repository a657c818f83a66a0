package engine

import (
	"context"
	"io"
	"time"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Upload stores a new file under parentID. The actor needs edit access on
// the parent and, if the parent lies under a locked folder, a valid
// unlock credential. The file's size is charged against the owner's quota
// before anything is written; on quota failure nothing is created.
//
// The blob write happens inside the same transaction as the metadata
// write, so a failed upload commits neither quota nor node. A blob left
// behind by a commit failure is orphaned, which is acceptable; a node
// pointing at missing content is not.
func (e *Engine) Upload(ctx context.Context, actor tree.UserID, parentID tree.NodeID, name, mimeType string, size int64, data io.Reader, unlockCred string) (*tree.Node, error) {
	name, err := tree.ValidateName(name)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, &tree.TreeError{
			Code:    tree.ErrInvalidArgument,
			Message: "size must not be negative",
			Path:    name,
		}
	}

	var node *tree.Node
	err = e.store.Update(ctx, func(tx tree.Tx) error {
		parent, err := e.prepareCreate(tx, actor, parentID, name, unlockCred)
		if err != nil {
			return err
		}

		if err := tryReserve(tx, parent.OwnerID, size); err != nil {
			return err
		}

		key := blobKey(parent.OwnerID, name)
		if err := e.blobs.Put(ctx, key, data, mimeType); err != nil {
			return tree.WrapDependency("failed to store file content", err)
		}

		node = &tree.Node{
			ID:         tree.NewNodeID(),
			Name:       name,
			SizeBytes:  size,
			MimeType:   mimeType,
			StorageRef: key,
			OwnerID:    parent.OwnerID,
			ParentID:   parent.ID,
			CreatedAt:  time.Now(),
		}
		return tx.PutNode(node)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("uploaded %s (%d bytes) into %s", node.Name, node.SizeBytes, parentID)
	return node, nil
}

// Mkdir creates a directory under parentID with the same authorization
// path as Upload. Directories consume no quota.
func (e *Engine) Mkdir(ctx context.Context, actor tree.UserID, parentID tree.NodeID, name, unlockCred string) (*tree.Node, error) {
	name, err := tree.ValidateName(name)
	if err != nil {
		return nil, err
	}

	var node *tree.Node
	err = e.store.Update(ctx, func(tx tree.Tx) error {
		parent, err := e.prepareCreate(tx, actor, parentID, name, unlockCred)
		if err != nil {
			return err
		}

		node = &tree.Node{
			ID:          tree.NewNodeID(),
			Name:        name,
			IsDirectory: true,
			OwnerID:     parent.OwnerID,
			ParentID:    parent.ID,
			CreatedAt:   time.Now(),
		}
		return tx.PutNode(node)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("created folder %s in %s", node.Name, parentID)
	return node, nil
}

// prepareCreate validates the common preconditions for creating a child
// under parentID: the parent exists, is a live directory, the actor has
// edit access, the lock gate passes (parent-inclusive: creating inside a
// locked folder exposes it), and the name is free among live siblings.
func (e *Engine) prepareCreate(tx tree.Tx, actor tree.UserID, parentID tree.NodeID, name, unlockCred string) (*tree.Node, error) {
	parent, err := tx.GetNode(parentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsDirectory {
		return nil, &tree.TreeError{
			Code:    tree.ErrInvalidArgument,
			Message: "parent is not a directory",
			Path:    parent.Name,
		}
	}
	if parent.Deleted {
		return nil, &tree.TreeError{
			Code:    tree.ErrNotFound,
			Message: "parent is in the trash",
			Path:    parent.Name,
		}
	}

	if err := requireAccess(tx, actor, parent, tree.LevelEdit); err != nil {
		return nil, err
	}
	if err := e.checkLockGate(tx, parent, true, unlockCred); err != nil {
		return nil, err
	}

	_, err = tx.LiveChild(parent.OwnerID, parent.ID, name)
	if err == nil {
		return nil, &tree.TreeError{
			Code:    tree.ErrConflict,
			Message: "a node with this name already exists",
			Path:    name,
		}
	}
	if !tree.IsCode(err, tree.ErrNotFound) {
		return nil, err
	}

	return parent, nil
}
