// Package memory implements tree.Store with in-memory storage.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/canopyfs/canopy/pkg/tree"
)

// MemoryStore implements tree.Store using in-memory maps.
//
// This implementation is suitable for:
//   - Testing and development environments
//   - Ephemeral deployments where persistence is not required
//
// Thread Safety:
// All operations are protected by a single read-write mutex, making the
// store safe for concurrent access from multiple goroutines. This
// coarse-grained locking is simple and correct; write transactions
// serialize, which also satisfies the quota-counter serialization
// requirement of the Store contract.
//
// Transaction Model:
// Update clones the full store state, runs the transaction function
// against the clone, and swaps the clone in only when the function
// returns nil. A failed transaction therefore leaves the store untouched,
// giving the all-or-nothing commit semantics the engine relies on. The
// clone-per-transaction cost is acceptable at the scale this store is
// meant for.
//
// All reads return copies; callers can freely mutate what they get back
// and nothing changes until PutNode/PutUser/PutGrant is called.
type MemoryStore struct {
	mu    sync.RWMutex
	state *state
}

// state holds the complete store contents. It is replaced wholesale on
// every committed Update.
type state struct {
	nodes  map[tree.NodeID]*tree.Node
	users  map[tree.UserID]*tree.User
	emails map[string]tree.UserID
	grants map[tree.NodeID]map[tree.UserID]*tree.ShareGrant
}

// NewMemoryStore creates an empty in-memory store ready for use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newState()}
}

func newState() *state {
	return &state{
		nodes:  make(map[tree.NodeID]*tree.Node),
		users:  make(map[tree.UserID]*tree.User),
		emails: make(map[string]tree.UserID),
		grants: make(map[tree.NodeID]map[tree.UserID]*tree.ShareGrant),
	}
}

// clone deep-copies the state so a transaction can mutate freely without
// touching the committed view.
func (s *state) clone() *state {
	next := &state{
		nodes:  make(map[tree.NodeID]*tree.Node, len(s.nodes)),
		users:  make(map[tree.UserID]*tree.User, len(s.users)),
		emails: make(map[string]tree.UserID, len(s.emails)),
		grants: make(map[tree.NodeID]map[tree.UserID]*tree.ShareGrant, len(s.grants)),
	}
	for id, n := range s.nodes {
		next.nodes[id] = cloneNode(n)
	}
	for id, u := range s.users {
		next.users[id] = cloneUser(u)
	}
	for email, id := range s.emails {
		next.emails[email] = id
	}
	for node, byGrantee := range s.grants {
		m := make(map[tree.UserID]*tree.ShareGrant, len(byGrantee))
		for grantee, g := range byGrantee {
			grant := *g
			m[grantee] = &grant
		}
		next.grants[node] = m
	}
	return next
}

func cloneNode(n *tree.Node) *tree.Node {
	c := *n
	if n.DeletedAt != nil {
		t := *n.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneUser(u *tree.User) *tree.User {
	c := *u
	return &c
}

// View runs fn against the committed state under a read lock.
func (s *MemoryStore) View(ctx context.Context, fn func(tx tree.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return fn(&memTx{state: s.state, writable: false})
}

// Update runs fn against a clone of the state and commits the clone iff
// fn returns nil.
func (s *MemoryStore) Update(ctx context.Context, fn func(tx tree.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	next := s.state.clone()
	if err := fn(&memTx{state: next, writable: true}); err != nil {
		return err
	}

	s.state = next
	return nil
}

// Healthcheck always succeeds: there are no external dependencies.
func (s *MemoryStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// ============================================================================
// Transaction
// ============================================================================

// memTx implements tree.Tx over a state. For Update transactions the
// state is a private clone; for View transactions it is the committed
// state and mutation methods are rejected.
type memTx struct {
	state    *state
	writable bool
}

func (tx *memTx) readOnlyErr() error {
	return &tree.TreeError{
		Code:    tree.ErrDependencyFailure,
		Message: "write issued inside a read-only transaction",
	}
}

func (tx *memTx) GetNode(id tree.NodeID) (*tree.Node, error) {
	n, ok := tx.state.nodes[id]
	if !ok {
		return nil, &tree.TreeError{
			Code:    tree.ErrNotFound,
			Message: "node not found",
			Path:    string(id),
		}
	}
	return cloneNode(n), nil
}

func (tx *memTx) PutNode(n *tree.Node) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}
	tx.state.nodes[n.ID] = cloneNode(n)
	return nil
}

func (tx *memTx) DeleteNode(id tree.NodeID) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}
	delete(tx.state.nodes, id)
	return nil
}

func (tx *memTx) Children(parent tree.NodeID) ([]*tree.Node, error) {
	var children []*tree.Node
	for _, n := range tx.state.nodes {
		if n.ParentID == parent {
			children = append(children, cloneNode(n))
		}
	}
	return children, nil
}

func (tx *memTx) LiveChild(owner tree.UserID, parent tree.NodeID, name string) (*tree.Node, error) {
	for _, n := range tx.state.nodes {
		if n.ParentID == parent && n.OwnerID == owner && n.Name == name && !n.Deleted {
			return cloneNode(n), nil
		}
	}
	return nil, &tree.TreeError{
		Code:    tree.ErrNotFound,
		Message: "no such child",
		Path:    name,
	}
}

func (tx *memTx) GetUser(id tree.UserID) (*tree.User, error) {
	u, ok := tx.state.users[id]
	if !ok {
		return nil, &tree.TreeError{
			Code:    tree.ErrNotFound,
			Message: "user not found",
			Path:    string(id),
		}
	}
	return cloneUser(u), nil
}

func (tx *memTx) GetUserByEmail(email string) (*tree.User, error) {
	id, ok := tx.state.emails[email]
	if !ok {
		return nil, &tree.TreeError{
			Code:    tree.ErrNotFound,
			Message: "user not found",
			Path:    email,
		}
	}
	return tx.GetUser(id)
}

func (tx *memTx) PutUser(u *tree.User) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}

	// Drop a stale email index entry if the email changed.
	if prev, ok := tx.state.users[u.ID]; ok && prev.Email != u.Email {
		delete(tx.state.emails, prev.Email)
	}

	tx.state.users[u.ID] = cloneUser(u)
	tx.state.emails[u.Email] = u.ID
	return nil
}

func (tx *memTx) GetGrant(node tree.NodeID, grantee tree.UserID) (*tree.ShareGrant, error) {
	g, ok := tx.state.grants[node][grantee]
	if !ok {
		return nil, &tree.TreeError{
			Code:    tree.ErrNotFound,
			Message: "share grant not found",
		}
	}
	grant := *g
	return &grant, nil
}

func (tx *memTx) PutGrant(g *tree.ShareGrant) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}
	byGrantee, ok := tx.state.grants[g.NodeID]
	if !ok {
		byGrantee = make(map[tree.UserID]*tree.ShareGrant)
		tx.state.grants[g.NodeID] = byGrantee
	}
	grant := *g
	byGrantee[g.GranteeID] = &grant
	return nil
}

func (tx *memTx) DeleteNodeGrants(node tree.NodeID) error {
	if !tx.writable {
		return tx.readOnlyErr()
	}
	delete(tx.state.grants, node)
	return nil
}

func (tx *memTx) UserGrants(grantee tree.UserID) ([]*tree.ShareGrant, error) {
	var grants []*tree.ShareGrant
	for _, byGrantee := range tx.state.grants {
		if g, ok := byGrantee[grantee]; ok {
			grant := *g
			grants = append(grants, &grant)
		}
	}
	sort.Slice(grants, func(i, j int) bool {
		return grants[i].CreatedAt.After(grants[j].CreatedAt)
	})
	return grants, nil
}

func (tx *memTx) SearchNodes(user tree.UserID, query string, limit, offset int) ([]*tree.Node, error) {
	needle := strings.ToLower(query)

	var matches []*tree.Node
	for _, n := range tx.state.nodes {
		if n.Deleted {
			continue
		}
		if !strings.Contains(strings.ToLower(n.Name), needle) {
			continue
		}
		if n.OwnerID != user {
			if _, ok := tx.state.grants[n.ID][user]; !ok {
				continue
			}
		}
		matches = append(matches, cloneNode(n))
	}

	tree.SortNodesNewestFirst(matches)
	return tree.PageNodes(matches, limit, offset), nil
}

func (tx *memTx) RecentFiles(owner tree.UserID, limit int) ([]*tree.Node, error) {
	var files []*tree.Node
	for _, n := range tx.state.nodes {
		if n.OwnerID == owner && !n.IsDirectory && !n.Deleted {
			files = append(files, cloneNode(n))
		}
	}

	tree.SortNodesNewestFirst(files)
	return tree.PageNodes(files, limit, 0), nil
}
