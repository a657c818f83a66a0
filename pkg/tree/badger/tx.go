package badger

import (
	"errors"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/canopyfs/canopy/pkg/tree"
)

// badgerTx implements tree.Tx over a single Badger transaction.
type badgerTx struct {
	txn      *badger.Txn
	writable bool
}

func (tx *badgerTx) readOnlyErr() error {
	return &tree.TreeError{
		Code:    tree.ErrDependencyFailure,
		Message: "write issued inside a read-only transaction",
	}
}

// get fetches a raw value, translating badger's not-found into the domain
// not-found error with the given message.
func (tx *badgerTx) get(key []byte, notFoundMsg, path string) ([]byte, error) {
	item, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &tree.TreeError{
			Code:    tree.ErrNotFound,
			Message: notFoundMsg,
			Path:    path,
		}
	}
	if err != nil {
		return nil, tree.WrapDependency("badger get failed", err)
	}

	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, tree.WrapDependency("badger value read failed", err)
	}
	return data, nil
}

// ============================================================================
// Nodes
// ============================================================================

func (tx *badgerTx) GetNode(id tree.NodeID) (*tree.Node, error) {
	data, err := tx.get(keyNode(id), "node not found", string(id))
	if err != nil {
		return nil, err
	}
	return decodeNode(data)
}

func (tx *badgerTx) PutNode(n *tree.Node) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}

	// Keep the children index consistent across moves: drop the old
	// parent's entry when the parent changed.
	prev, err := tx.GetNode(n.ID)
	switch {
	case err == nil:
		if prev.ParentID != n.ParentID && prev.ParentID != "" {
			if delErr := tx.txn.Delete(keyChild(prev.ParentID, n.ID)); delErr != nil {
				return tree.WrapDependency("failed to update children index", delErr)
			}
		}
	case tree.IsCode(err, tree.ErrNotFound):
		// New node, nothing to unlink.
	default:
		return err
	}

	data, err := encodeNode(n)
	if err != nil {
		return err
	}
	if err := tx.txn.Set(keyNode(n.ID), data); err != nil {
		return tree.WrapDependency("failed to store node", err)
	}

	if n.ParentID != "" {
		if err := tx.txn.Set(keyChild(n.ParentID, n.ID), nil); err != nil {
			return tree.WrapDependency("failed to update children index", err)
		}
	}
	return nil
}

func (tx *badgerTx) DeleteNode(id tree.NodeID) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}

	n, err := tx.GetNode(id)
	if err != nil {
		return err
	}

	if n.ParentID != "" {
		if err := tx.txn.Delete(keyChild(n.ParentID, id)); err != nil {
			return tree.WrapDependency("failed to update children index", err)
		}
	}
	if err := tx.txn.Delete(keyNode(id)); err != nil {
		return tree.WrapDependency("failed to delete node", err)
	}
	return nil
}

func (tx *badgerTx) Children(parent tree.NodeID) ([]*tree.Node, error) {
	prefix := keyChildPrefix(parent)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var children []*tree.Node
	for it.Rewind(); it.Valid(); it.Next() {
		childID := childIDFromKey(it.Item().KeyCopy(nil), prefix)
		child, err := tx.GetNode(childID)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func (tx *badgerTx) LiveChild(owner tree.UserID, parent tree.NodeID, name string) (*tree.Node, error) {
	children, err := tx.Children(parent)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.OwnerID == owner && child.Name == name && !child.Deleted {
			return child, nil
		}
	}
	return nil, &tree.TreeError{
		Code:    tree.ErrNotFound,
		Message: "no such child",
		Path:    name,
	}
}

// ============================================================================
// Users
// ============================================================================

func (tx *badgerTx) GetUser(id tree.UserID) (*tree.User, error) {
	data, err := tx.get(keyUser(id), "user not found", string(id))
	if err != nil {
		return nil, err
	}
	return decodeUser(data)
}

func (tx *badgerTx) GetUserByEmail(email string) (*tree.User, error) {
	data, err := tx.get(keyEmail(email), "user not found", email)
	if err != nil {
		return nil, err
	}
	return tx.GetUser(tree.UserID(data))
}

func (tx *badgerTx) PutUser(u *tree.User) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}

	// Drop a stale email index entry if the email changed.
	prev, err := tx.GetUser(u.ID)
	switch {
	case err == nil:
		if prev.Email != u.Email {
			if delErr := tx.txn.Delete(keyEmail(prev.Email)); delErr != nil {
				return tree.WrapDependency("failed to update email index", delErr)
			}
		}
	case tree.IsCode(err, tree.ErrNotFound):
		// New user.
	default:
		return err
	}

	data, err := encodeUser(u)
	if err != nil {
		return err
	}
	if err := tx.txn.Set(keyUser(u.ID), data); err != nil {
		return tree.WrapDependency("failed to store user", err)
	}
	if err := tx.txn.Set(keyEmail(u.Email), []byte(u.ID)); err != nil {
		return tree.WrapDependency("failed to update email index", err)
	}
	return nil
}

// ============================================================================
// Share Grants
// ============================================================================

func (tx *badgerTx) GetGrant(node tree.NodeID, grantee tree.UserID) (*tree.ShareGrant, error) {
	data, err := tx.get(keyGrant(node, grantee), "share grant not found", "")
	if err != nil {
		return nil, err
	}
	return decodeGrant(data)
}

func (tx *badgerTx) PutGrant(g *tree.ShareGrant) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}

	data, err := encodeGrant(g)
	if err != nil {
		return err
	}
	if err := tx.txn.Set(keyGrant(g.NodeID, g.GranteeID), data); err != nil {
		return tree.WrapDependency("failed to store share grant", err)
	}
	if err := tx.txn.Set(keyGranteeIndex(g.GranteeID, g.NodeID), nil); err != nil {
		return tree.WrapDependency("failed to update grantee index", err)
	}
	return nil
}

func (tx *badgerTx) DeleteNodeGrants(node tree.NodeID) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}

	prefix := keyGrantPrefix(node)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	// Collect first: deleting while iterating the same prefix is
	// undefined in badger.
	var grants []*tree.ShareGrant
	for it.Rewind(); it.Valid(); it.Next() {
		data, err := it.Item().ValueCopy(nil)
		if err != nil {
			return tree.WrapDependency("badger value read failed", err)
		}
		g, err := decodeGrant(data)
		if err != nil {
			return err
		}
		grants = append(grants, g)
	}

	for _, g := range grants {
		if err := tx.txn.Delete(keyGrant(g.NodeID, g.GranteeID)); err != nil {
			return tree.WrapDependency("failed to delete share grant", err)
		}
		if err := tx.txn.Delete(keyGranteeIndex(g.GranteeID, g.NodeID)); err != nil {
			return tree.WrapDependency("failed to update grantee index", err)
		}
	}
	return nil
}

func (tx *badgerTx) UserGrants(grantee tree.UserID) ([]*tree.ShareGrant, error) {
	prefix := keyGranteePrefix(grantee)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var nodeIDs []tree.NodeID
	for it.Rewind(); it.Valid(); it.Next() {
		nodeIDs = append(nodeIDs, nodeIDFromGranteeKey(it.Item().KeyCopy(nil), prefix))
	}

	var grants []*tree.ShareGrant
	for _, nodeID := range nodeIDs {
		g, err := tx.GetGrant(nodeID, grantee)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}

	sort.Slice(grants, func(i, j int) bool {
		return grants[i].CreatedAt.After(grants[j].CreatedAt)
	})
	return grants, nil
}

// ============================================================================
// Queries
// ============================================================================

func (tx *badgerTx) SearchNodes(user tree.UserID, query string, limit, offset int) ([]*tree.Node, error) {
	needle := strings.ToLower(query)

	var matches []*tree.Node
	err := tx.scanNodes(func(n *tree.Node) error {
		if n.Deleted {
			return nil
		}
		if !strings.Contains(strings.ToLower(n.Name), needle) {
			return nil
		}
		if n.OwnerID != user {
			_, grantErr := tx.GetGrant(n.ID, user)
			if tree.IsCode(grantErr, tree.ErrNotFound) {
				return nil
			}
			if grantErr != nil {
				return grantErr
			}
		}
		matches = append(matches, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tree.SortNodesNewestFirst(matches)
	return tree.PageNodes(matches, limit, offset), nil
}

func (tx *badgerTx) RecentFiles(owner tree.UserID, limit int) ([]*tree.Node, error) {
	var files []*tree.Node
	err := tx.scanNodes(func(n *tree.Node) error {
		if n.OwnerID == owner && !n.IsDirectory && !n.Deleted {
			files = append(files, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tree.SortNodesNewestFirst(files)
	return tree.PageNodes(files, limit, 0), nil
}

// scanNodes walks every node record and invokes fn for each.
func (tx *badgerTx) scanNodes(fn func(n *tree.Node) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = keyNodePrefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		data, err := it.Item().ValueCopy(nil)
		if err != nil {
			return tree.WrapDependency("badger value read failed", err)
		}
		n, err := decodeNode(data)
		if err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}
