package tree

import "context"

// ============================================================================
// Store Interface
// ============================================================================

// Store provides durable keyed storage for tree nodes, users, and share
// grants.
//
// The store manages persistence only. Authorization, lock gating, quota
// arithmetic, and tree-consistency rules (acyclic parent chains, sibling
// name uniqueness, top-down restore ordering) are enforced by pkg/engine
// on top of this contract.
//
// Transaction Model:
//
// Every engine operation runs inside exactly one View or Update call.
// The function passed to Update sees a consistent snapshot and its writes
// commit atomically when it returns nil. If it returns an error, nothing
// is committed, including writes already issued through the Tx. This is
// the boundary the quota invariant depends on: a structural mutation and
// its quota adjustment either both land or neither does.
//
// Concurrent Update calls racing on the same user's quota counter must
// serialize. Implementations achieve this with a store-wide write lock
// (memory) or serializable transactions (badger); either prevents lost
// updates that would let StorageUsed drift past StorageAllotted.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// View runs fn in a read-only transaction. fn must not call mutating
	// Tx methods; implementations may reject or ignore such writes.
	//
	// Returns fn's error, a context cancellation error, or a storage
	// failure wrapped as ErrDependencyFailure.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Update runs fn in a read-write transaction. All writes issued by fn
	// commit atomically iff fn returns nil.
	//
	// Returns fn's error (nothing committed), a context cancellation
	// error, or a storage failure wrapped as ErrDependencyFailure.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Healthcheck verifies the store can serve requests. Implementations
	// with external dependencies should verify connectivity; in-memory
	// implementations typically return nil.
	Healthcheck(ctx context.Context) error

	// Close releases store resources. The store must not be used after
	// Close returns.
	Close() error
}

// Tx is the set of operations available inside a Store transaction.
//
// All lookups return ErrNotFound (as a TreeError) when the entity is
// absent. Writes are staged until the surrounding Update commits.
type Tx interface {
	// ========================================================================
	// Nodes
	// ========================================================================

	// GetNode returns the node with the given ID.
	GetNode(id NodeID) (*Node, error)

	// PutNode inserts or replaces a node. The caller owns invariant
	// enforcement; the store writes what it is given.
	PutNode(n *Node) error

	// DeleteNode removes a node record entirely (hard delete). It does
	// not touch children or grants; the engine drives the recursion and
	// the grant cascade.
	DeleteNode(id NodeID) error

	// Children returns every child of the given directory, including
	// trashed ones, in no particular order.
	Children(parent NodeID) ([]*Node, error)

	// LiveChild returns the non-deleted child of parent with the given
	// name and owner, or ErrNotFound. This is the sibling-collision and
	// name-resolution query: trashed nodes never collide.
	LiveChild(owner UserID, parent NodeID, name string) (*Node, error)

	// ========================================================================
	// Users
	// ========================================================================

	// GetUser returns the user with the given ID.
	GetUser(id UserID) (*User, error)

	// GetUserByEmail returns the user registered under the given email.
	GetUserByEmail(email string) (*User, error)

	// PutUser inserts or replaces a user, including the quota counters.
	PutUser(u *User) error

	// ========================================================================
	// Share Grants
	// ========================================================================

	// GetGrant returns the grant for (node, grantee), or ErrNotFound.
	GetGrant(node NodeID, grantee UserID) (*ShareGrant, error)

	// PutGrant inserts a grant. Replacing an existing (node, grantee)
	// grant is allowed at this layer; the engine rejects duplicates
	// before calling.
	PutGrant(g *ShareGrant) error

	// DeleteNodeGrants removes every grant attached to the node. Used as
	// the cascade when a node is purged. Removing grants for a node that
	// has none is not an error.
	DeleteNodeGrants(node NodeID) error

	// UserGrants returns every grant where the given user is the grantee.
	UserGrants(grantee UserID) ([]*ShareGrant, error)

	// ========================================================================
	// Queries
	// ========================================================================

	// SearchNodes returns non-deleted nodes whose name contains query
	// (case-insensitive) and that the user either owns or holds a direct
	// grant on. Results are ordered by creation time descending and
	// paginated with limit/offset. The matching strategy is a black box:
	// implementations may use scans, indexes, or external search.
	SearchNodes(user UserID, query string, limit, offset int) ([]*Node, error)

	// RecentFiles returns the user's most recently created non-deleted
	// file nodes (directories excluded), newest first, capped at limit.
	RecentFiles(owner UserID, limit int) ([]*Node, error)
}
