package engine

import (
	"context"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Lock password-protects a directory's subtree. Owner-only and
// directory-only; only the credential's hash is stored.
func (e *Engine) Lock(ctx context.Context, actor tree.UserID, folderID tree.NodeID, cred string) error {
	if cred == "" {
		return &tree.TreeError{
			Code:    tree.ErrInvalidArgument,
			Message: "lock credential must not be empty",
		}
	}

	hash, err := e.hasher.Hash(cred)
	if err != nil {
		return tree.WrapDependency("failed to hash lock credential", err)
	}

	err = e.store.Update(ctx, func(tx tree.Tx) error {
		folder, err := getOwnedNode(tx, actor, folderID)
		if err != nil {
			return err
		}
		if !folder.IsDirectory {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "only directories can be locked",
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

		folder.Locked = true
		folder.LockCredentialHash = hash
		return tx.PutNode(folder)
	})
	if err != nil {
		return err
	}

	logger.Debug("locked folder %s", folderID)
	return nil
}

// Unlock removes a directory's lock. Owner-only; the current credential
// must be supplied.
func (e *Engine) Unlock(ctx context.Context, actor tree.UserID, folderID tree.NodeID, cred string) error {
	err := e.store.Update(ctx, func(tx tree.Tx) error {
		folder, err := getOwnedNode(tx, actor, folderID)
		if err != nil {
			return err
		}
		if !folder.Locked {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "folder is not locked",
				Path:    folder.Name,
			}
		}
		if !e.hasher.Verify(folder.LockCredentialHash, cred) {
			return &tree.TreeError{
				Code:    tree.ErrForbidden,
				Message: "invalid lock credential",
				Path:    folder.Name,
			}
		}

		folder.Locked = false
		folder.LockCredentialHash = ""
		return tx.PutNode(folder)
	})
	if err != nil {
		return err
	}

	logger.Debug("unlocked folder %s", folderID)
	return nil
}
