package tree

import "sort"

// SortNodesNewestFirst orders nodes by creation time descending, with the
// ID as a deterministic tie-breaker. Query results (search, recent files)
// are sorted this way by every store implementation.
func SortNodesNewestFirst(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// PageNodes applies offset and limit to a sorted result slice. A limit of
// zero or less means unlimited; an offset past the end yields nil.
func PageNodes(nodes []*Node, limit, offset int) []*Node {
	if offset >= len(nodes) {
		return nil
	}
	nodes = nodes[offset:]
	if limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes
}
