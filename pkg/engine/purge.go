package engine

import (
	"context"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Purge irreversibly removes a trashed node and everything under it,
// depth-first. Each file's blob is deleted before its metadata; a blob
// failure aborts the whole transaction so no metadata is removed for
// content that may still exist. Share grants on purged nodes are
// cascade-deleted.
func (e *Engine) Purge(ctx context.Context, actor tree.UserID, nodeID tree.NodeID) error {
	err := e.store.Update(ctx, func(tx tree.Tx) error {
		node, err := getOwnedNode(tx, actor, nodeID)
		if err != nil {
			return err
		}
		if !node.Deleted {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "only trashed nodes can be purged",
				Path:    node.Name,
			}
		}

		return e.purgeSubtree(ctx, tx, node)
	})
	if err != nil {
		return err
	}

	logger.Info("purged node %s", nodeID)
	return nil
}

// purgeSubtree removes node and its descendants, children first. Blob
// deletion failures propagate: the caller's transaction aborts rather
// than leaving a node whose content was not confirmed gone.
func (e *Engine) purgeSubtree(ctx context.Context, tx tree.Tx, node *tree.Node) error {
	if node.IsDirectory {
		children, err := tx.Children(node.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := e.purgeSubtree(ctx, tx, child); err != nil {
				return err
			}
		}
	} else if node.StorageRef != "" {
		if err := e.blobs.Delete(ctx, node.StorageRef); err != nil {
			return tree.WrapDependency("failed to delete file content", err)
		}
	}

	if err := tx.DeleteNodeGrants(node.ID); err != nil {
		return err
	}
	return tx.DeleteNode(node.ID)
}
