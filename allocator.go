package paging

import (
	"github.com/luxfi/log"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// BackingSlotAllocator hands out backing-region slots in a pseudo-random
// permutation, so an external observer of backing traffic can't infer
// eviction order from slot addresses. It is also the process-wide
// implementation of interfaces.BackingPageSource: the Merkle node pool and
// the pageout counter store carve their own metadata pages out of the same
// scrambled sequence.
type BackingSlotAllocator struct {
	base       uint64
	pageSize   uint32
	totalPages uint64

	stride     uint64 // k * page_size, gcd(k, totalPages) == 1
	nextOffset uint64 // offset from base, in bytes
	remaining  uint64 // slots not yet handed out in this cycle

	exhausted bool
	log       log.Logger
}

// NewBackingSlotAllocator builds an allocator over totalPages page-sized
// slots starting at base. rnd supplies the entropy used to pick the stride
// coprime to totalPages. logger may be nil, in which case a no-op logger
// is used.
func NewBackingSlotAllocator(base uint64, totalPages uint64, pageSize uint32, rnd interfaces.RandomSource, logger log.Logger) *BackingSlotAllocator {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	if totalPages < 2 {
		panic("paging: backing region must hold at least 2 pages")
	}

	k := findCoprimeOf(totalPages, rnd)

	return &BackingSlotAllocator{
		base:       base,
		pageSize:   pageSize,
		totalPages: totalPages,
		stride:     k * uint64(pageSize),
		nextOffset: 0,
		remaining:  totalPages,
		log:        logger,
	}
}

// findCoprimeOf rejection-samples a k in [n/2, n) with gcd(k, n) == 1.
func findCoprimeOf(n uint64, rnd interfaces.RandomSource) uint64 {
	half := n / 2
	span := n - half
	if span == 0 {
		span = 1
	}
	for {
		k := half + randUint64(rnd)%span
		if k == 0 {
			continue
		}
		if gcd(k, n) == 1 {
			return k
		}
	}
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func randUint64(rnd interfaces.RandomSource) uint64 {
	var buf [8]byte
	rnd.Fill(buf[:])
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// AllocBackingSlot returns a page-aligned address inside the backing
// region, or ok=false once the region has been fully cycled. Because
// gcd(stride/pageSize, totalPages) == 1, the returned sequence visits
// every slot exactly once before repeating.
func (a *BackingSlotAllocator) AllocBackingSlot() (addr uint64, ok bool) {
	if a.exhausted {
		return 0, false
	}

	addr = a.base + a.nextOffset
	regionBytes := a.totalPages * uint64(a.pageSize)
	a.nextOffset = (a.nextOffset + a.stride) % regionBytes
	a.remaining--

	if a.nextOffset == 0 {
		// Cycled back to the origin: every slot has now been handed out
		// exactly once. Signal exhaustion after this return; warn once.
		a.exhausted = true
		a.log.Warn("backing region exhausted", "base", a.base, "totalPages", a.totalPages)
	}
	return addr, true
}

// AllocBackingPage implements interfaces.BackingPageSource, giving the node
// pool and counter store the same scrambled allocation the data-eviction
// path uses.
func (a *BackingSlotAllocator) AllocBackingPage() (uint64, bool) {
	return a.AllocBackingSlot()
}

// RemainingSlots reports how many slots have not yet been handed out in the
// current cycle.
func (a *BackingSlotAllocator) RemainingSlots() uint64 {
	return a.remaining
}
