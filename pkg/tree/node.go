// Package tree defines the domain model and persistence contract for the
// Canopy file tree: nodes (files and directories), users with storage
// quotas, and share grants.
//
// The package holds only types and interfaces. Implementations live in
// subpackages (memory, badger) and the algorithms that operate on the tree
// live in pkg/engine.
package tree

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NodeID uniquely identifies a node. IDs are opaque and stable: a node
// keeps its ID across renames, moves, and trash/restore cycles.
type NodeID string

// UserID uniquely identifies a user.
type UserID string

// NewNodeID returns a fresh random node ID.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// NewUserID returns a fresh random user ID.
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

// PermissionLevel is the access level carried by a share grant, and the
// level an operation requires.
type PermissionLevel string

const (
	// LevelView allows reading: listing directories, downloading files,
	// searching.
	LevelView PermissionLevel = "view"

	// LevelEdit allows structural changes: upload, mkdir, rename, move.
	// Edit implies view.
	LevelEdit PermissionLevel = "edit"
)

// Valid reports whether the level is one of the defined constants.
func (l PermissionLevel) Valid() bool {
	return l == LevelView || l == LevelEdit
}

// Satisfies reports whether a grant at level l is sufficient for an
// operation requiring level required. Edit satisfies everything; view
// satisfies only view.
func (l PermissionLevel) Satisfies(required PermissionLevel) bool {
	if l == LevelEdit {
		return true
	}
	return l == LevelView && required == LevelView
}

// Node is a single entry in a user's file tree: either a directory or a
// file. Directories carry no content and no size; files point at blob
// storage via StorageRef and record their size once at upload.
//
// Invariants maintained by the engine (not by stores):
//   - the parent chain is acyclic and files never have children
//   - non-deleted siblings of one owner have unique names
//   - Deleted implies DeletedAt is set; active nodes have DeletedAt nil
//   - Locked implies IsDirectory and a non-empty LockCredentialHash
type Node struct {
	// ID is the stable, opaque identifier of the node.
	ID NodeID `json:"id"`

	// Name is the display name within the parent directory.
	// Never empty and never contains path separators.
	Name string `json:"name"`

	// IsDirectory is immutable after creation.
	IsDirectory bool `json:"is_directory"`

	// SizeBytes is 0 for directories. For files it is set once at upload
	// and never mutated afterwards.
	SizeBytes int64 `json:"size_bytes"`

	// MimeType is the content type reported at upload. Files only.
	MimeType string `json:"mime_type,omitempty"`

	// StorageRef is the opaque blob-store key for the file content.
	// Empty for directories.
	StorageRef string `json:"storage_ref,omitempty"`

	// Deleted marks the node as trashed. Trashed nodes stay in the store
	// until purged.
	Deleted bool `json:"deleted"`

	// DeletedAt is set exactly when Deleted is true.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Locked marks a directory as password-protected. The lock guards the
	// directory's whole subtree.
	Locked bool `json:"locked"`

	// LockCredentialHash is the hashed lock credential. Present iff Locked.
	LockCredentialHash string `json:"lock_credential_hash,omitempty"`

	// OwnerID is the owning user. Immutable.
	OwnerID UserID `json:"owner_id"`

	// ParentID references the containing directory. Empty only for a
	// user's root node.
	ParentID NodeID `json:"parent_id,omitempty"`

	// CreatedAt is the creation timestamp, used for recency queries.
	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether the node is a user's root directory.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// User is a tenant of the storage service. StorageUsed is mutated only
// through the quota ledger, inside the same transaction as the structural
// change that caused it.
type User struct {
	ID UserID `json:"id"`

	// Email is the unique login identifier, also used as the share-grant
	// recipient address.
	Email string `json:"email"`

	// CredentialHash is the hashed account password.
	CredentialHash string `json:"credential_hash"`

	// StorageAllotted is the quota cap in bytes.
	StorageAllotted int64 `json:"storage_allotted"`

	// StorageUsed is the bytes currently consumed by active (non-trashed)
	// file nodes. Always >= 0.
	StorageUsed int64 `json:"storage_used"`

	// RootNodeID is the user's root directory.
	RootNodeID NodeID `json:"root_node_id"`
}

// ShareGrant gives a non-owner user access to a node and, by inheritance,
// to its descendants. At most one grant exists per (node, grantee) pair.
type ShareGrant struct {
	NodeID    NodeID          `json:"node_id"`
	GranteeID UserID          `json:"grantee_id"`
	Level     PermissionLevel `json:"level"`
	CreatedAt time.Time       `json:"created_at"`
}

// ValidateName checks a proposed node name: it must be non-empty after
// trimming and must not contain path separators. Returns the trimmed name.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &TreeError{
			Code:    ErrInvalidArgument,
			Message: "name must not be empty",
		}
	}
	if strings.ContainsAny(trimmed, `/\`) {
		return "", &TreeError{
			Code:    ErrInvalidArgument,
			Message: `name must not contain '/' or '\'`,
			Path:    trimmed,
		}
	}
	return trimmed, nil
}
