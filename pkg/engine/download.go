package engine

import (
	"context"

	"github.com/canopyfs/canopy/pkg/tree"
)

// Download returns a presigned URL for a file's content, valid for the
// configured TTL. The actor needs view access; the lock gate covers the
// file's ancestor chain. Directories and trashed files cannot be
// downloaded.
func (e *Engine) Download(ctx context.Context, actor tree.UserID, fileID tree.NodeID, unlockCred string) (string, error) {
	var storageRef string
	err := e.store.View(ctx, func(tx tree.Tx) error {
		file, err := tx.GetNode(fileID)
		if err != nil {
			return err
		}
		if file.IsDirectory {
			return &tree.TreeError{
				Code:    tree.ErrInvalidArgument,
				Message: "cannot download a directory",
				Path:    file.Name,
			}
		}
		if file.Deleted {
			return &tree.TreeError{
				Code:    tree.ErrNotFound,
				Message: "file is in the trash",
				Path:    file.Name,
			}
		}

		if err := requireAccess(tx, actor, file, tree.LevelView); err != nil {
			return err
		}
		if err := e.checkLockGate(tx, file, true, unlockCred); err != nil {
			return err
		}

		storageRef = file.StorageRef
		return nil
	})
	if err != nil {
		return "", err
	}

	url, err := e.blobs.PresignedGetURL(ctx, storageRef, e.opts.DownloadTTL)
	if err != nil {
		return "", tree.WrapDependency("failed to presign download", err)
	}
	return url, nil
}
