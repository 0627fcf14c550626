// Package tree assembles flat parent-referencing rows into ordered nested trees.
package tree

import "sort"

// Root is the parent id of top level nodes.
const Root uint = 0

// Node is a row that knows its own id, its parent's id and its position among siblings.
type Node interface {
	TreeID() uint
	TreeParentID() uint
	TreeOrder() int
}

// Build groups nodes by parent id and nests them starting at Root. Siblings are ordered by
// TreeOrder, then TreeID. attach returns node with children set. Nodes whose parent chain
// does not lead to Root are dropped.
func Build[T Node](nodes []T, attach func(node T, children []T) T) []T {
	byParent := make(map[uint][]T, len(nodes))
	for _, n := range nodes {
		byParent[n.TreeParentID()] = append(byParent[n.TreeParentID()], n)
	}
	for _, siblings := range byParent {
		sort.SliceStable(siblings, func(i, j int) bool {
			if siblings[i].TreeOrder() != siblings[j].TreeOrder() {
				return siblings[i].TreeOrder() < siblings[j].TreeOrder()
			}
			return siblings[i].TreeID() < siblings[j].TreeID()
		})
	}
	return build(byParent, Root, attach, make(map[uint]bool))
}

func build[T Node](byParent map[uint][]T, parentID uint, attach func(T, []T) T, seen map[uint]bool) []T {
	siblings := byParent[parentID]
	if len(siblings) == 0 {
		return nil
	}
	out := make([]T, 0, len(siblings))
	for _, n := range siblings {
		if seen[n.TreeID()] {
			continue
		}
		seen[n.TreeID()] = true
		out = append(out, attach(n, build(byParent, n.TreeID(), attach, seen)))
	}
	return out
}

// Walk visits every node of a nested tree depth first, passing its depth (0 for roots).
func Walk[T any](nodes []T, children func(T) []T, visit func(node T, depth int)) {
	walk(nodes, children, visit, 0)
}

func walk[T any](nodes []T, children func(T) []T, visit func(T, int), depth int) {
	for _, n := range nodes {
		visit(n, depth)
		walk(children(n), children, visit, depth+1)
	}
}

// CreatesCycle reports whether moving node id under parentID would make id its own ancestor.
// parents maps every known node id to its parent id.
func CreatesCycle(parents map[uint]uint, id, parentID uint) bool {
	if parentID == Root {
		return false
	}
	seen := make(map[uint]bool)
	for cur := parentID; cur != Root; cur = parents[cur] {
		if cur == id || seen[cur] {
			return true
		}
		seen[cur] = true
		if _, ok := parents[cur]; !ok {
			return false
		}
	}
	return false
}
