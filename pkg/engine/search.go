package engine

import (
	"context"
	"strings"

	"github.com/canopyfs/canopy/pkg/tree"
)

// Search finds live nodes whose name contains the query, case-insensitive,
// among nodes the actor owns or has a direct grant on. Results are newest
// first; limit and offset page through them.
func (e *Engine) Search(ctx context.Context, actor tree.UserID, query string, limit, offset int) ([]*tree.Node, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &tree.TreeError{
			Code:    tree.ErrInvalidArgument,
			Message: "search query must not be empty",
		}
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var results []*tree.Node
	err := e.store.View(ctx, func(tx tree.Tx) error {
		var err error
		results, err = tx.SearchNodes(actor, query, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
