package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type node struct {
	id, parent uint
	order      int
	children   []node
}

func (n node) TreeID() uint       { return n.id }
func (n node) TreeParentID() uint { return n.parent }
func (n node) TreeOrder() int     { return n.order }

func attach(n node, children []node) node {
	n.children = children
	return n
}

func ids(nodes []node) []uint {
	out := make([]uint, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}

func TestBuild(t *testing.T) {
	t.Run("Nests and orders siblings", func(t *testing.T) {
		rows := []node{
			{id: 1, parent: Root, order: 2},
			{id: 2, parent: Root, order: 1},
			{id: 3, parent: 1, order: 5},
			{id: 4, parent: 1, order: 3},
			{id: 5, parent: 4, order: 1},
		}
		roots := Build(rows, attach)

		assert.Equal(t, []uint{2, 1}, ids(roots))
		assert.Empty(t, roots[0].children)
		assert.Equal(t, []uint{4, 3}, ids(roots[1].children))
		assert.Equal(t, []uint{5}, ids(roots[1].children[0].children))
	})

	t.Run("Equal order falls back to id", func(t *testing.T) {
		rows := []node{{id: 9, order: 1}, {id: 3, order: 1}, {id: 6, order: 1}}
		assert.Equal(t, []uint{3, 6, 9}, ids(Build(rows, attach)))
	})

	t.Run("Orphans are dropped", func(t *testing.T) {
		rows := []node{{id: 1}, {id: 2, parent: 42}, {id: 3, parent: 2}}
		assert.Equal(t, []uint{1}, ids(Build(rows, attach)))
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, Build([]node{}, attach))
	})
}

func TestWalk(t *testing.T) {
	roots := Build([]node{
		{id: 1, order: 1},
		{id: 2, parent: 1, order: 1},
		{id: 3, parent: 2, order: 1},
		{id: 4, order: 2},
	}, attach)

	var visited []uint
	var depths []int
	Walk(roots, func(n node) []node { return n.children }, func(n node, depth int) {
		visited = append(visited, n.id)
		depths = append(depths, depth)
	})

	assert.Equal(t, []uint{1, 2, 3, 4}, visited)
	assert.Equal(t, []int{0, 1, 2, 0}, depths)
}

func TestCreatesCycle(t *testing.T) {
	parents := map[uint]uint{1: Root, 2: 1, 3: 2, 4: Root}

	assert.False(t, CreatesCycle(parents, 3, Root))
	assert.False(t, CreatesCycle(parents, 3, 4))
	assert.False(t, CreatesCycle(parents, 4, 3))
	assert.True(t, CreatesCycle(parents, 1, 3), "moving a node under its grandchild")
	assert.True(t, CreatesCycle(parents, 2, 2), "moving a node under itself")
}
