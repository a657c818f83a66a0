package engine

import (
	"context"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Move reparents a node under a destination directory. The actor needs
// edit access on both the node and the destination. The destination must
// be a live directory, must not be the node's current parent, and for
// directories must not lie inside the node's own subtree. Lock gates on
// the source chain and the destination chain are validated independently
// against the same supplied credential.
func (e *Engine) Move(ctx context.Context, actor tree.UserID, nodeID, destID tree.NodeID, unlockCred string) (*tree.Node, error) {
	var node *tree.Node
	err := e.store.Update(ctx, func(tx tree.Tx) error {
		var err error
		node, err = tx.GetNode(nodeID)
		if err != nil {
			return err
		}
		if node.IsRoot() {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "cannot move the root folder",
			}
		}
		if node.Deleted {
			return &tree.TreeError{
				Code:    tree.ErrNotFound,
				Message: "node is in the trash",
				Path:    node.Name,
			}
		}

		dest, err := tx.GetNode(destID)
		if err != nil {
			return err
		}
		if !dest.IsDirectory {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "destination is not a directory",
				Path:    dest.Name,
			}
		}
		if dest.Deleted {
			return &tree.TreeError{
				Code:    tree.ErrNotFound,
				Message: "destination is in the trash",
				Path:    dest.Name,
			}
		}
		if dest.ID == node.ParentID {
			return &tree.TreeError{
				Code:    tree.ErrConflict,
				Message: "node is already in this folder",
				Path:    node.Name,
			}
		}

		// Cycle prevention applies to directories only; files have no
		// descendants so the guard is moot for them.
		if node.IsDirectory {
			inside, err := isWithinSubtree(tx, dest, node.ID)
			if err != nil {
				return err
			}
			if inside {
				return &tree.TreeError{
					Code:    tree.ErrConflict,
					Message: "cannot move a folder into itself or its own subtree",
					Path:    node.Name,
				}
			}
		}

		if err := requireAccess(tx, actor, node, tree.LevelEdit); err != nil {
			return err
		}
		if err := requireAccess(tx, actor, dest, tree.LevelEdit); err != nil {
			return err
		}

		// Source and destination chains may be guarded by different locks.
		if err := e.checkLockGate(tx, node, false, unlockCred); err != nil {
			return err
		}
		if err := e.checkLockGate(tx, dest, true, unlockCred); err != nil {
			return err
		}

		_, err = tx.LiveChild(node.OwnerID, dest.ID, node.Name)
		if err == nil {
			return &tree.TreeError{
				Code:    tree.ErrConflict,
				Message: "a node with this name already exists at the destination",
				Path:    node.Name,
			}
		}
		if !tree.IsCode(err, tree.ErrNotFound) {
			return err
		}

		node.ParentID = dest.ID
		return tx.PutNode(node)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("moved node %s into %s", nodeID, destID)
	return node, nil
}

// isWithinSubtree reports whether start is ancestorID itself or lies
// anywhere under it, by walking start's ancestor chain.
func isWithinSubtree(tx tree.Tx, start *tree.Node, ancestorID tree.NodeID) (bool, error) {
	current := start
	for current != nil {
		if current.ID == ancestorID {
			return true, nil
		}
		if current.IsRoot() {
			return false, nil
		}
		parent, err := tx.GetNode(current.ParentID)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}
