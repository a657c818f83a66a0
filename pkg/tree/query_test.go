package tree_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/canopyfs/canopy/pkg/tree"
)

func TestSortNodesNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	nodes := []*tree.Node{
		{ID: "b", CreatedAt: base},
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
	}

	tree.SortNodesNewestFirst(nodes)

	require.Equal(t, tree.NodeID("c"), nodes[0].ID)
	// Equal timestamps fall back to ID order.
	require.Equal(t, tree.NodeID("a"), nodes[1].ID)
	require.Equal(t, tree.NodeID("b"), nodes[2].ID)
}

func TestPageNodes(t *testing.T) {
	nodes := []*tree.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	require.Len(t, tree.PageNodes(nodes, 2, 0), 2)
	require.Equal(t, tree.NodeID("c"), tree.PageNodes(nodes, 2, 2)[0].ID)
	require.Len(t, tree.PageNodes(nodes, 0, 0), 3)
	require.Nil(t, tree.PageNodes(nodes, 2, 5))
}
