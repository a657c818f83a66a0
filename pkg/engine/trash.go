package engine

import (
	"context"
	"time"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Trash soft-deletes a node and, for directories, every live descendant.
// Only the owner may trash a node; share grants do not include delete
// rights. The accumulated size of the trashed files is released back to
// the owner's quota. Trashing an already-trashed node is a no-op.
func (e *Engine) Trash(ctx context.Context, actor tree.UserID, nodeID tree.NodeID, unlockCred string) error {
	err := e.store.Update(ctx, func(tx tree.Tx) error {
		node, err := getOwnedNode(tx, actor, nodeID)
		if err != nil {
			return err
		}
		if node.IsRoot() {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "cannot trash the root folder",
			}
		}
		if node.Deleted {
			// Idempotent: re-trashing changes nothing and releases nothing.
			return nil
		}

		if err := e.checkLockGate(tx, node, false, unlockCred); err != nil {
			return err
		}

		deletedAt := time.Now()
		freed, err := trashSubtree(tx, node, deletedAt)
		if err != nil {
			return err
		}
		return release(tx, node.OwnerID, freed)
	})
	if err != nil {
		return err
	}

	logger.Debug("trashed node %s", nodeID)
	return nil
}

// trashSubtree marks node and its live descendants as trashed, children
// before the node itself, and returns the total size of the files it
// flipped. Already-trashed subtrees are skipped and contribute zero, so
// re-entry after a partial commit is safe.
func trashSubtree(tx tree.Tx, node *tree.Node, deletedAt time.Time) (int64, error) {
	if node.Deleted {
		return 0, nil
	}

	var freed int64
	if node.IsDirectory {
		children, err := tx.Children(node.ID)
		if err != nil {
			return 0, err
		}
		for _, child := range children {
			childFreed, err := trashSubtree(tx, child, deletedAt)
			if err != nil {
				return 0, err
			}
			freed += childFreed
		}
	} else {
		freed = node.SizeBytes
	}

	node.Deleted = true
	at := deletedAt
	node.DeletedAt = &at
	if err := tx.PutNode(node); err != nil {
		return 0, err
	}
	return freed, nil
}
