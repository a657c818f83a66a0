package badger

import (
	"encoding/json"

	"github.com/canopyfs/canopy/pkg/tree"
)

// Serialization Strategy
// ======================
//
// Badger stores raw bytes, so records are serialized before writing.
// Nodes, users, and grants are JSON-encoded: human-readable, debuggable
// with badger's CLI tooling, and flexible under schema evolution. Index
// entries (children, email, grantee) carry their information in the key
// and store either an ID or nothing, so they need no encoding at all.

func encodeNode(n *tree.Node) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, tree.WrapDependency("failed to encode node", err)
	}
	return data, nil
}

func decodeNode(data []byte) (*tree.Node, error) {
	var n tree.Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, tree.WrapDependency("failed to decode node", err)
	}
	return &n, nil
}

func encodeUser(u *tree.User) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, tree.WrapDependency("failed to encode user", err)
	}
	return data, nil
}

func decodeUser(data []byte) (*tree.User, error) {
	var u tree.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, tree.WrapDependency("failed to decode user", err)
	}
	return &u, nil
}

func encodeGrant(g *tree.ShareGrant) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, tree.WrapDependency("failed to encode share grant", err)
	}
	return data, nil
}

func decodeGrant(data []byte) (*tree.ShareGrant, error) {
	var g tree.ShareGrant
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, tree.WrapDependency("failed to decode share grant", err)
	}
	return &g, nil
}
