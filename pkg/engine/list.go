package engine

import (
	"context"

	"github.com/canopyfs/canopy/pkg/tree"
)

// List returns the live (non-trashed) children of a folder. The actor
// needs view access; the lock gate includes the folder itself, since
// listing exposes its contents.
func (e *Engine) List(ctx context.Context, actor tree.UserID, folderID tree.NodeID, unlockCred string) ([]*tree.Node, error) {
	var children []*tree.Node
	err := e.store.View(ctx, func(tx tree.Tx) error {
		folder, err := tx.GetNode(folderID)
		if err != nil {
			return err
		}
		if !folder.IsDirectory {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "node is not a directory",
				Path:    folder.Name,
			}
		}
		if folder.Deleted {
			return &tree.TreeError{
				Code:    tree.ErrNotFound,
				Message: "folder is in the trash",
				Path:    folder.Name,
			}
		}

		if err := requireAccess(tx, actor, folder, tree.LevelView); err != nil {
			return err
		}
		if err := e.checkLockGate(tx, folder, true, unlockCred); err != nil {
			return err
		}

		all, err := tx.Children(folder.ID)
		if err != nil {
			return err
		}
		for _, child := range all {
			if !child.Deleted {
				children = append(children, child)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// Trashed returns the actor's own trashed nodes whose parent is not
// itself trashed, i.e. the top-level entries of the trash view.
func (e *Engine) Trashed(ctx context.Context, actor tree.UserID) ([]*tree.Node, error) {
	var trashed []*tree.Node
	err := e.store.View(ctx, func(tx tree.Tx) error {
		user, err := tx.GetUser(actor)
		if err != nil {
			return err
		}
		return e.collectTrashRoots(tx, user.RootNodeID, &trashed)
	})
	if err != nil {
		return nil, err
	}
	return trashed, nil
}

// collectTrashRoots walks the subtree under id and collects trashed nodes
// without descending into them: a trashed folder represents its whole
// subtree in the trash view.
func (e *Engine) collectTrashRoots(tx tree.Tx, id tree.NodeID, out *[]*tree.Node) error {
	children, err := tx.Children(id)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.Deleted {
			*out = append(*out, child)
			continue
		}
		if child.IsDirectory {
			if err := e.collectTrashRoots(tx, child.ID, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Recent returns the actor's most recently created live files, newest
// first.
func (e *Engine) Recent(ctx context.Context, actor tree.UserID, limit int) ([]*tree.Node, error) {
	if limit <= 0 {
		limit = 10
	}

	var files []*tree.Node
	err := e.store.View(ctx, func(tx tree.Tx) error {
		var err error
		files, err = tx.RecentFiles(actor, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
