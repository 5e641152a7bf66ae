// Package paging implements an authenticated paging pipeline for a trusted
// execution environment: enclave pages are evicted to an untrusted backing
// region encrypted under a per-slot monotonic counter, and every evicted
// page's hash is tracked in a B+ Merkle tree so that rollback,
// substitution, and tampering are detected on restore.
package paging

import (
	"github.com/luxfi/log"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
	"github.com/iaclab-hpme/keystone-runtime/pagecrypto"
)

// System bundles the fully wired paging subsystem: the scrambling slot
// allocator, the pageout counter store, the Merkle tree, and the pipeline
// that drives them. All four share one backing region and are singletons
// for the life of the process.
type System struct {
	Allocator *BackingSlotAllocator
	Counters  *CounterStore
	Tree      *Tree
	Pipeline  *Pipeline
}

// Init wires up a complete paging subsystem over a backing region of
// totalPages page-sized slots and an EPM byte store. accel may be nil, in
// which case the software cipher and hash paths are used. logger may be
// nil.
func Init(cfg Config, backing, epm interfaces.BackingBytes, backingBase, totalPages uint64, accel interfaces.Accelerator, logger log.Logger) *System {
	cfg.Validate()

	rnd := pagecrypto.DRBGSource{}
	hasher := pagecrypto.NewHash(cfg.Accelerated)

	var cipher interfaces.Cipher = pagecrypto.AESCTR{}
	if !cfg.Confidential {
		cipher = pagecrypto.Passthrough{}
	}

	alloc := NewBackingSlotAllocator(backingBase, totalPages, cfg.PageSize, rnd, logger)
	ctrs := NewCounterStore(cfg, backingBase, alloc, backing, rnd, logger)
	pool := NewNodePool(cfg, alloc, logger)
	tree := NewTree(cfg, pool, hasher)
	pipeline := NewPipeline(cfg, backing, epm, ctrs, tree, rnd, cipher, hasher, accel, logger)

	return &System{
		Allocator: alloc,
		Counters:  ctrs,
		Tree:      tree,
		Pipeline:  pipeline,
	}
}
