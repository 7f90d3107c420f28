package persist

import "sort"

// node is one entry of the registrar tree: either a leaf bound to a single
// Element, or a branch of named children. Exactly one of leaf and children
// is set.
type node struct {
	leaf     Element
	children map[string]*node
}

func newBranch() *node {
	return &node{children: make(map[string]*node)}
}

func newLeaf(el Element) *node {
	return &node{leaf: el}
}

func (n *node) isLeaf() bool {
	return n.leaf != nil
}

// keys returns the child names in sorted order so that saves and loads walk
// the tree deterministically.
func (n *node) keys() []string {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// leaves counts the elements at or below n.
func (n *node) leaves() int {
	if n.isLeaf() {
		return 1
	}
	total := 0
	for _, c := range n.children {
		total += c.leaves()
	}
	return total
}
