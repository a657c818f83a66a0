package engine

import (
	"github.com/canopyfs/canopy/pkg/tree"
)

// resolveAccess computes the effective permission of user on node by
// walking the ancestor chain.
//
// At each visited node, in order:
//  1. Ownership grants unconditional access (owners have implicit edit
//     everywhere in their own subtree).
//  2. A direct share grant for (visited node, user) is final at that
//     level: edit satisfies any requirement, view satisfies only view.
//     The walk stops here even if a closer-to-root ancestor would have
//     decided differently.
//  3. Otherwise the walk continues to the parent.
//
// Reaching past the root without a match denies access. Sharing a folder
// therefore shares its whole subtree, and the nearest share point wins.
func resolveAccess(tx tree.Tx, user tree.UserID, node *tree.Node, required tree.PermissionLevel) (bool, error) {
	current := node
	for current != nil {
		if current.OwnerID == user {
			return true, nil
		}

		grant, err := tx.GetGrant(current.ID, user)
		switch {
		case err == nil:
			return grant.Level.Satisfies(required), nil
		case tree.IsCode(err, tree.ErrNotFound):
			// No grant at this level, keep walking.
		default:
			return false, err
		}

		if current.IsRoot() {
			break
		}
		parent, err := tx.GetNode(current.ParentID)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}

// requireAccess is resolveAccess with a Forbidden error on denial.
func requireAccess(tx tree.Tx, user tree.UserID, node *tree.Node, required tree.PermissionLevel) error {
	ok, err := resolveAccess(tx, user, node, required)
	if err != nil {
		return err
	}
	if !ok {
		return &tree.TreeError{
			Code:    tree.ErrForbidden,
			Message: "insufficient permission",
			Path:    node.Name,
		}
	}
	return nil
}
