package engine

import (
	"context"
	"strings"
	"time"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/tree"
)

// Register creates a new account with a hashed password, a fresh root
// directory, and the default storage allotment. The email must not be in
// use.
func (e *Engine) Register(ctx context.Context, email, password string) (*tree.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &tree.TreeError{
			Code:    tree.ErrInvalidArgument,
			Message: "email must not be empty",
		}
	}
	if password == "" {
		return nil, &tree.TreeError{
			Code:    tree.ErrInvalidArgument,
			Message: "password must not be empty",
		}
	}

	hash, err := e.hasher.Hash(password)
	if err != nil {
		return nil, tree.WrapDependency("failed to hash password", err)
	}

	var user *tree.User
	err = e.store.Update(ctx, func(tx tree.Tx) error {
		_, err := tx.GetUserByEmail(email)
		if err == nil {
			return &tree.TreeError{
				Code:    tree.ErrConflict,
				Message: "email already registered",
				Path:    email,
			}
		}
		if !tree.IsCode(err, tree.ErrNotFound) {
			return err
		}

		root := &tree.Node{
			ID:          tree.NewNodeID(),
			Name:        RootFolderName,
			IsDirectory: true,
			CreatedAt:   time.Now(),
		}
		user = &tree.User{
			ID:              tree.NewUserID(),
			Email:           email,
			CredentialHash:  hash,
			StorageAllotted: e.opts.StorageAllotment,
			RootNodeID:      root.ID,
		}
		root.OwnerID = user.ID

		if err := tx.PutUser(user); err != nil {
			return err
		}
		return tx.PutNode(root)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("registered user %s", user.Email)
	return user, nil
}

// Authenticate verifies an email/password pair and returns the account.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (e *Engine) Authenticate(ctx context.Context, email, password string) (*tree.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	invalid := &tree.TreeError{
		Code:    tree.ErrForbidden,
		Message: "invalid credentials",
	}

	var user *tree.User
	err := e.store.View(ctx, func(tx tree.Tx) error {
		u, err := tx.GetUserByEmail(email)
		if tree.IsCode(err, tree.ErrNotFound) {
			return invalid
		}
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !e.hasher.Verify(user.CredentialHash, password) {
		return nil, invalid
	}
	return user, nil
}
