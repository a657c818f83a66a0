package badger

import "github.com/canopyfs/canopy/pkg/tree"

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the different
// record types into logical namespaces. This design:
//   - Prevents key collisions between record types
//   - Enables efficient range scans (children of a directory, grants on a
//     node, grants held by a user)
//   - Makes the database structure self-documenting
//
// Record Type        Prefix   Key Format                      Value
// =====================================================================
// Node               "n:"     n:<nodeID>                      Node (JSON)
// Children Index     "c:"     c:<parentID>:<childID>          (empty)
// User               "u:"     u:<userID>                      User (JSON)
// Email Index        "ue:"    ue:<email>                      userID (bytes)
// Share Grant        "g:"     g:<nodeID>:<granteeID>          ShareGrant (JSON)
// Grantee Index      "gu:"    gu:<granteeID>:<nodeID>         (empty)
//
// Design Notes:
//
// 1. Children Index (c:)
//    The child's ID, not its name, forms the key suffix. Sibling names are
//    only unique among non-deleted nodes of one owner, so a name-keyed
//    index would collide the moment a trashed node shares a name with a
//    live one. Children are enumerated with a prefix scan over
//    "c:<parentID>:" and filtered in code.
//
// 2. Grant keys are written in both directions: g: for point lookups and
//    the per-node cascade on purge, gu: for the shared-with-me query.
//    Both entries are maintained inside the same transaction.
//
// 3. IDs are UUID strings and never contain ':', so the separator is
//    unambiguous. Emails terminate their key, so no separator issue
//    arises there either.

func keyNode(id tree.NodeID) []byte {
	return []byte("n:" + string(id))
}

func keyChildPrefix(parent tree.NodeID) []byte {
	return []byte("c:" + string(parent) + ":")
}

func keyChild(parent tree.NodeID, child tree.NodeID) []byte {
	return []byte("c:" + string(parent) + ":" + string(child))
}

func keyUser(id tree.UserID) []byte {
	return []byte("u:" + string(id))
}

func keyEmail(email string) []byte {
	return []byte("ue:" + email)
}

func keyGrant(node tree.NodeID, grantee tree.UserID) []byte {
	return []byte("g:" + string(node) + ":" + string(grantee))
}

func keyGrantPrefix(node tree.NodeID) []byte {
	return []byte("g:" + string(node) + ":")
}

func keyGranteeIndex(grantee tree.UserID, node tree.NodeID) []byte {
	return []byte("gu:" + string(grantee) + ":" + string(node))
}

func keyGranteePrefix(grantee tree.UserID) []byte {
	return []byte("gu:" + string(grantee) + ":")
}

// keyNodePrefix is the prefix for scanning every node record.
var keyNodePrefix = []byte("n:")

// childIDFromKey extracts the child node ID from a children-index key.
func childIDFromKey(key []byte, prefix []byte) tree.NodeID {
	return tree.NodeID(key[len(prefix):])
}

// nodeIDFromGranteeKey extracts the node ID from a grantee-index key.
func nodeIDFromGranteeKey(key []byte, prefix []byte) tree.NodeID {
	return tree.NodeID(key[len(prefix):])
}
