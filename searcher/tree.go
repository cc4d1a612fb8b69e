package searcher

import "fmt"

// Tree is a bump-allocated arena of nodes. The root always lives in slot 0 and
// children of a node occupy one contiguous block. Nodes are never freed one by
// one; Reset drops the whole tree and keeps the storage.
type Tree struct {
	nodes []Node
	size  int
}

func NewTree(capacity int) *Tree {
	if capacity < 1 {
		capacity = 1
	}
	t := &Tree{nodes: make([]Node, capacity)}
	t.Reset()
	return t
}

func (t *Tree) Reset() {
	t.size = 1
	t.nodes[0].reset()
}

func (t *Tree) Root() NodeID {
	return 0
}

// Node returns the node with the given ID. The pointer must not be kept across
// Allocate, which may move the arena.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= t.size {
		panic(fmt.Sprintf("node %d is not allocated (tree size %d)", id, t.size))
	}
	return &t.nodes[id]
}

// Children is a view of a node's children, valid until the next Allocate.
func (t *Tree) Children(id NodeID) []Node {
	n := t.Node(id)
	if n.numChildren == 0 {
		return nil
	}
	start := int(n.firstChild)
	return t.nodes[start : start+n.numChildren]
}

// Allocate reserves n contiguous nodes and returns the ID of the first one.
func (t *Tree) Allocate(n int) NodeID {
	if n <= 0 {
		panic("cannot allocate an empty block of nodes")
	}
	first := t.size
	if need := first + n; need > len(t.nodes) {
		grown := make([]Node, max(need, 2*len(t.nodes)))
		copy(grown, t.nodes[:t.size])
		t.nodes = grown
	}
	t.size += n
	return NodeID(first)
}

// Size is the number of allocated nodes, root included.
func (t *Tree) Size() int {
	return t.size
}

func (t *Tree) Capacity() int {
	return len(t.nodes)
}
