package paging

import (
	"github.com/luxfi/log"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// nodeSlotSize is the layout size of one tree node inside an arena chunk.
// The Go Node type doesn't pack its fields into 320 raw bytes; the
// constant only governs how many node slots one chunk is deemed to hold.
const nodeSlotSize = 320

// chunk is one arena page's worth of node slots. Slot 0 is permanently
// reserved for the chunk's own header, so a chunk of N slots yields N-1
// allocatable nodes. Free slots are tracked one bool per slot plus a
// count.
type chunk struct {
	addr      uint64
	nodes     []*Node
	free      []bool
	freeCount int
	next      *chunk
}

// NodePool is the B+ Merkle tree's node allocator: a grow-only arena of
// page-sized chunks. Individual nodes are never freed; the pool is bounded
// by the working set of live backing pages.
type NodePool struct {
	nodesPerChunk int
	pages         interfaces.BackingPageSource
	head          *chunk
	log           log.Logger
}

// NewNodePool builds a pool whose chunks are carved out of pages.
func NewNodePool(cfg Config, pages interfaces.BackingPageSource, logger log.Logger) *NodePool {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	nodesPerChunk := int(cfg.PageSize / nodeSlotSize)
	if nodesPerChunk < 2 {
		panic("paging: page size too small to hold a node-pool chunk header plus one node")
	}
	return &NodePool{
		nodesPerChunk: nodesPerChunk,
		pages:         pages,
		log:           logger,
	}
}

// allocChunk obtains a fresh backing page and carves it into nodesPerChunk
// slots, slot 0 reserved for the header.
func (p *NodePool) allocChunk() *chunk {
	addr, ok := p.pages.AllocBackingPage()
	if !ok {
		// No page for a new chunk: fatal.
		panic(PagingErr(ErrAllocatorFailure))
	}

	c := &chunk{
		addr:  addr,
		nodes: make([]*Node, p.nodesPerChunk),
		free:  make([]bool, p.nodesPerChunk),
	}
	for i := 1; i < p.nodesPerChunk; i++ {
		c.free[i] = true
	}
	c.freeCount = p.nodesPerChunk - 1
	p.log.Debug("allocated merkle node-pool chunk", "addr", addr, "capacity", c.freeCount)
	return c
}

// allocNode returns a fresh, zero-valued Node, pulling a new chunk to the
// head of the chunks-with-free-space list when the current head is
// exhausted. Full chunks are unlinked lazily as they bubble to the head.
func (p *NodePool) allocNode() *Node {
	for p.head != nil && p.head.freeCount == 0 {
		p.head = p.head.next
	}
	if p.head == nil {
		c := p.allocChunk()
		c.next = nil
		p.head = c
	}

	c := p.head
	for i := 1; i < len(c.free); i++ {
		if c.free[i] {
			c.free[i] = false
			c.freeCount--
			n := &Node{}
			c.nodes[i] = n
			return n
		}
	}
	// Unreachable: freeCount > 0 implies some slot is marked free.
	panic("paging: node-pool chunk freelist inconsistent")
}
