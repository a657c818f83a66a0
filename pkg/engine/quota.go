package engine

import (
	"github.com/canopyfs/canopy/pkg/tree"
)

// tryReserve charges bytes against the user's quota. It fails with
// QuotaExceeded when the headroom is insufficient, writing nothing. The
// caller's transaction makes the reservation atomic with the structural
// change that triggered it.
func tryReserve(tx tree.Tx, userID tree.UserID, bytes int64) error {
	if bytes == 0 {
		return nil
	}

	user, err := tx.GetUser(userID)
	if err != nil {
		return err
	}

	if user.StorageUsed+bytes > user.StorageAllotted {
		return &tree.TreeError{
			Code:    tree.ErrQuotaExceeded,
			Message: "insufficient storage quota",
		}
	}

	user.StorageUsed += bytes
	return tx.PutUser(user)
}

// release returns bytes to the user's quota, flooring at zero so the
// counter can never go negative.
func release(tx tree.Tx, userID tree.UserID, bytes int64) error {
	if bytes == 0 {
		return nil
	}

	user, err := tx.GetUser(userID)
	if err != nil {
		return err
	}

	user.StorageUsed -= bytes
	if user.StorageUsed < 0 {
		user.StorageUsed = 0
	}
	return tx.PutUser(user)
}

// quotaHeadroom reports the bytes still available to the user.
func quotaHeadroom(tx tree.Tx, userID tree.UserID) (int64, error) {
	user, err := tx.GetUser(userID)
	if err != nil {
		return 0, err
	}
	return user.StorageAllotted - user.StorageUsed, nil
}
