package engine

import (
	"context"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Restore brings a trashed node and its trashed descendants back to the
// active state. Only the owner may restore. The direct parent must not
// itself be trashed: subtrees are restored top-down, nearest trashed
// ancestor first. Quota headroom for the whole subtree is verified before
// any node is flipped.
func (e *Engine) Restore(ctx context.Context, actor tree.UserID, nodeID tree.NodeID) error {
	err := e.store.Update(ctx, func(tx tree.Tx) error {
		node, err := getOwnedNode(tx, actor, nodeID)
		if err != nil {
			return err
		}
		if !node.Deleted {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "node is not in the trash",
				Path:    node.Name,
			}
		}

		if !node.IsRoot() {
			parent, err := tx.GetNode(node.ParentID)
			if err != nil {
				return err
			}
			if parent.Deleted {
				return &tree.TreeError{
					Code:    tree.ErrConflict,
					Message: "parent folder is still in the trash, restore it first",
					Path:    parent.Name,
				}
			}
		}

		total, err := trashedSubtreeSize(tx, node)
		if err != nil {
			return err
		}

		headroom, err := quotaHeadroom(tx, node.OwnerID)
		if err != nil {
			return err
		}
		if total > headroom {
			return &tree.TreeError{
				Code:    tree.ErrQuotaExceeded,
				Message: "insufficient storage quota to restore",
				Path:    node.Name,
			}
		}

		if err := restoreSubtree(tx, node); err != nil {
			return err
		}
		return tryReserve(tx, node.OwnerID, total)
	})
	if err != nil {
		return err
	}

	logger.Debug("restored node %s", nodeID)
	return nil
}

// trashedSubtreeSize sums the sizes of trashed files in the subtree
// rooted at node, without mutating anything.
func trashedSubtreeSize(tx tree.Tx, node *tree.Node) (int64, error) {
	if !node.Deleted {
		return 0, nil
	}

	if !node.IsDirectory {
		return node.SizeBytes, nil
	}

	var total int64
	children, err := tx.Children(node.ID)
	if err != nil {
		return 0, err
	}
	for _, child := range children {
		size, err := trashedSubtreeSize(tx, child)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

// restoreSubtree flips node and its trashed descendants back to active.
// Descendants that were never trashed are left alone.
func restoreSubtree(tx tree.Tx, node *tree.Node) error {
	if !node.Deleted {
		return nil
	}

	node.Deleted = false
	node.DeletedAt = nil
	if err := tx.PutNode(node); err != nil {
		return err
	}

	if !node.IsDirectory {
		return nil
	}

	children, err := tx.Children(node.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := restoreSubtree(tx, child); err != nil {
			return err
		}
	}
	return nil
}
