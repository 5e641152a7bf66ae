package paging

import (
	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// Node is one B+ Merkle tree node. Leaves and internal nodes share this
// shape; isLeaf selects which of value/children is live.
type Node struct {
	isLeaf   bool
	validNum int
	hash     [32]byte
	pivot    []uint64 // len fanOut+1; unused slots hold the zero sentinel
	value    [][32]byte
	children []*Node
}

func newLeaf(fanOut int) *Node {
	// value carries one slot beyond fanOut: a leaf goes transiently
	// overfull to fanOut+1 entries before the split/redistribute decision.
	return &Node{
		isLeaf: true,
		pivot:  make([]uint64, fanOut+1),
		value:  make([][32]byte, fanOut+1),
	}
}

func newInternal(fanOut int) *Node {
	return &Node{
		isLeaf:   false,
		pivot:    make([]uint64, fanOut+1),
		children: make([]*Node, fanOut+1),
	}
}

// Tree is the B+ Merkle tree: key = backing-page address, value = 32-byte
// expected hash. The root's address (its Go pointer) never changes for the
// tree's lifetime; splits rewrite the root in place, so only its contents
// mutate.
type Tree struct {
	fanOut int
	root   *Node
	pool   *NodePool
	hasher interfaces.Hasher
}

// NewTree builds an empty tree: a single leaf root with no entries.
func NewTree(cfg Config, pool *NodePool, hasher interfaces.Hasher) *Tree {
	root := newLeaf(cfg.FanOut)
	hasher.Sum(&root.hash) // hash of zero stored values
	return &Tree{
		fanOut: cfg.FanOut,
		root:   root,
		pool:   pool,
		hasher: hasher,
	}
}

// Root returns the tree's root node. Callers may hold this pointer
// forever: splits mutate *root in place rather than replacing it.
func (t *Tree) Root() *Node { return t.root }

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool { return n.isLeaf }

// ValidNum reports how many slots of n are live.
func (n *Node) ValidNum() int { return n.validNum }

// Pivot returns n's i'th pivot (the subtree minimum for internal nodes, the
// stored key for leaves).
func (n *Node) Pivot(i int) uint64 { return n.pivot[i] }

// Hash returns n's stored Merkle hash.
func (n *Node) Hash() [32]byte { return n.hash }

// rehash recomputes and stores n's hash from its live children/values.
func (t *Tree) rehash(n *Node) {
	t.hasher.Sum(&n.hash, n.hashInputs()...)
}

// hashInputs returns the ordered byte spans a node's hash is computed over:
// its values (leaf) or its children's hashes (internal).
func (n *Node) hashInputs() [][]byte {
	out := make([][]byte, 0, n.validNum)
	if n.isLeaf {
		for i := 0; i < n.validNum; i++ {
			out = append(out, n.value[i][:])
		}
	} else {
		for i := 0; i < n.validNum; i++ {
			out = append(out, n.children[i].hash[:])
		}
	}
	return out
}

// recomputeHash computes what n's hash should currently be, without storing
// it. Used by Verify to check against the stored value.
func (t *Tree) recomputeHash(n *Node, dst *[32]byte) {
	t.hasher.Sum(dst, n.hashInputs()...)
}

// findChildIndex returns the largest i with pivot[i] <= key: the descent
// position for both insert and verify.
func findChildIndex(n *Node, key uint64) int {
	j := 0
	for j < n.validNum && key >= n.pivot[j] {
		j++
	}
	if j != 0 {
		j--
	}
	return j
}

// Walk performs a BFS traversal of the tree, invoking visit once per node
// with its depth from the root. Useful for debug dumps and whole-tree
// invariant checks.
func (t *Tree) Walk(visit func(depth int, n *Node)) {
	type item struct {
		n     *Node
		depth int
	}
	queue := []item{{t.root, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visit(cur.depth, cur.n)
		if !cur.n.isLeaf {
			for i := 0; i < cur.n.validNum; i++ {
				queue = append(queue, item{cur.n.children[i], cur.depth + 1})
			}
		}
	}
}
