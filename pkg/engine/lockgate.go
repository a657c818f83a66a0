package engine

import (
	"github.com/canopyfs/canopy/pkg/tree"
)

// firstLockedAncestor walks from start toward the root and returns the
// nearest locked directory, or nil if the path is unguarded. Pass the
// node itself as start when the operation touches the node's own content
// (listing a folder, downloading a file); pass its parent when the node
// is only being manipulated structurally from outside.
func firstLockedAncestor(tx tree.Tx, start *tree.Node) (*tree.Node, error) {
	current := start
	for current != nil {
		if current.Locked {
			return current, nil
		}
		if current.IsRoot() {
			return nil, nil
		}
		parent, err := tx.GetNode(current.ParentID)
		if err != nil {
			return nil, err
		}
		current = parent
	}
	return nil, nil
}

// checkLockGate enforces the lock gate for an operation on node. With
// includeSelf the node itself participates in the search (directory
// operations on the directory's own content). A locked ancestor with no
// matching credential yields Forbidden; the credential is compared
// against the stored hash, never against plaintext.
func (e *Engine) checkLockGate(tx tree.Tx, node *tree.Node, includeSelf bool, unlockCred string) error {
	start := node
	if !includeSelf {
		if node.IsRoot() {
			return nil
		}
		parent, err := tx.GetNode(node.ParentID)
		if err != nil {
			return err
		}
		start = parent
	}

	locked, err := firstLockedAncestor(tx, start)
	if err != nil {
		return err
	}
	if locked == nil {
		return nil
	}

	if unlockCred == "" || !e.hasher.Verify(locked.LockCredentialHash, unlockCred) {
		return &tree.TreeError{
			Code:    tree.ErrForbidden,
			Message: "folder is locked",
			Path:    locked.Name,
		}
	}
	return nil
}
