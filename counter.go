package paging

import (
	"encoding/binary"

	"github.com/luxfi/log"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// CounterStore is the lazily-populated two-level pageout counter table. It
// hands out a stable 64-bit counter handle per backing slot, born with a
// cryptographically random value and strictly monotone thereafter.
//
// The top-level directory has a fixed length (Config.CounterDirLen); each
// occupied entry points at one indirect page holding PageSize/8 counters.
// Indirect pages are carved out of the same backing allocator the Merkle
// node pool uses, so counter state lives inside the backing region itself.
type CounterStore struct {
	regionBase    uint64
	pageSize      uint32
	slotsPerPage  uint64 // E
	pages         interfaces.BackingPageSource
	bytes         interfaces.BackingBytes
	rnd           interfaces.RandomSource
	log           log.Logger
	indirect      []uint64 // top-level directory; 0 means unallocated
	indirectAlloc []bool
}

// NewCounterStore builds a counter store over a backing region that starts
// at regionBase. cfg.CounterDirLen bounds how many indirect pages the
// directory can ever address; a slot past that bound is a configuration
// error, not a runtime condition.
func NewCounterStore(cfg Config, regionBase uint64, pages interfaces.BackingPageSource, bytes interfaces.BackingBytes, rnd interfaces.RandomSource, logger log.Logger) *CounterStore {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &CounterStore{
		regionBase:    regionBase,
		pageSize:      cfg.PageSize,
		slotsPerPage:  cfg.counterSlotsPerPage(),
		pages:         pages,
		bytes:         bytes,
		rnd:           rnd,
		log:           logger,
		indirect:      make([]uint64, cfg.CounterDirLen),
		indirectAlloc: make([]bool, cfg.CounterDirLen),
	}
}

// counterRefBytes returns the 8-byte window backing the counter for a given
// backing-region slot address, installing a fresh, randomly-initialized
// indirect page on first access.
func (c *CounterStore) counterRefBytes(slotAddr uint64) []byte {
	idx := (slotAddr - c.regionBase) / uint64(c.pageSize)
	top := idx / c.slotsPerPage
	inner := idx % c.slotsPerPage

	if int(top) >= len(c.indirect) {
		// The directory cannot address this slot: fatal. A typed panic
		// value lets tests recover() and assert on it.
		panic(configPanic{msg: "counter directory too small for backing region"})
	}

	if !c.indirectAlloc[top] {
		addr, ok := c.pages.AllocBackingPage()
		if !ok {
			panic(configPanic{msg: "backing allocator exhausted while installing counter indirect page"})
		}
		page := c.bytes.BytesAt(addr, c.pageSize)
		// Fill the fresh indirect page with random bytes so every
		// counter it holds starts unpredictable: rollback detection has
		// teeth even before the first legitimate eviction.
		c.rnd.Fill(page)
		c.indirect[top] = addr
		c.indirectAlloc[top] = true
		c.log.Debug("installed counter indirect page", "top", top, "addr", addr)
	}

	base := c.bytes.BytesAt(c.indirect[top], c.pageSize)
	off := inner * 8
	return base[off : off+8]
}

// CounterRef is a stable handle to the pageout counter for one backing
// slot. Reads and writes go through Load/Store rather than a raw *uint64
// since the counter physically lives in backing-region bytes, not in a Go
// heap object; stability holds because the same address always maps to the
// same backing bytes for the life of the region.
type CounterRef struct {
	buf []byte
}

// CounterRef returns the stable counter handle for slotAddr.
func (c *CounterStore) CounterRef(slotAddr uint64) CounterRef {
	return CounterRef{buf: c.counterRefBytes(slotAddr)}
}

// Load reads the current counter value.
func (r CounterRef) Load() uint64 {
	return binary.LittleEndian.Uint64(r.buf)
}

// Store writes a new counter value. Callers are responsible for the
// monotonicity invariant: a counter only ever advances by 1 per eviction,
// and its only writer is Pipeline.PageSwap.
func (r CounterRef) Store(v uint64) {
	binary.LittleEndian.PutUint64(r.buf, v)
}
