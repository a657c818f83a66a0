package engine

import (
	"context"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Rename changes a node's name. The actor needs edit access; the new
// name must be valid and free among the node's live siblings (renaming to
// the current name is not a collision). Root directories cannot be
// renamed.
func (e *Engine) Rename(ctx context.Context, actor tree.UserID, nodeID tree.NodeID, newName, unlockCred string) (*tree.Node, error) {
	newName, err := tree.ValidateName(newName)
	if err != nil {
		return nil, err
	}

	var node *tree.Node
	err = e.store.Update(ctx, func(tx tree.Tx) error {
		var err error
		node, err = tx.GetNode(nodeID)
		if err != nil {
			return err
		}
		if node.IsRoot() {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "cannot rename the root folder",
			}
		}
		if node.Deleted {
			return &tree.TreeError{
				Code:    tree.ErrNotFound,
				Message: "node is in the trash",
				Path:    node.Name,
			}
		}

		if err := requireAccess(tx, actor, node, tree.LevelEdit); err != nil {
			return err
		}
		if err := e.checkLockGate(tx, node, false, unlockCred); err != nil {
			return err
		}

		sibling, err := tx.LiveChild(node.OwnerID, node.ParentID, newName)
		if err == nil && sibling.ID != node.ID {
			return &tree.TreeError{
				Code:    tree.ErrConflict,
				Message: "a node with this name already exists",
				Path:    newName,
			}
		}
		if err != nil && !tree.IsCode(err, tree.ErrNotFound) {
			return err
		}

		node.Name = newName
		return tx.PutNode(node)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("renamed node %s to %s", nodeID, newName)
	return node, nil
}
