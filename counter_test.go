package paging

import (
	"testing"

	"github.com/iaclab-hpme/keystone-runtime/pagecrypto"
	"github.com/iaclab-hpme/keystone-runtime/storage/region"
)

func newTestCounterStore(t *testing.T, dirLen int, totalPages uint64) (*CounterStore, *BackingSlotAllocator, *region.Region) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CounterDirLen = dirLen
	cfg.Validate()

	r := region.New(0x5000_0000, totalPages*uint64(cfg.PageSize), cfg.PageSize)
	rnd := pagecrypto.DRBGSource{}
	alloc := NewBackingSlotAllocator(r.Base(), totalPages, cfg.PageSize, rnd, nil)
	ctrs := NewCounterStore(cfg, r.Base(), alloc, r, rnd, nil)
	return ctrs, alloc, r
}

func TestCounterStore_refStableAndMonotone(t *testing.T) {
	ctrs, alloc, _ := newTestCounterStore(t, 960, 32)

	slot, ok := alloc.AllocBackingSlot()
	if !ok {
		t.Fatalf("AllocBackingSlot() failed")
	}

	// Indirect pages are randomly initialized, so the initial value can't
	// be asserted, only that refs to the same slot stay coherent.
	ref1 := ctrs.CounterRef(slot)
	initial := ref1.Load()

	ref1.Store(initial + 1)

	ref2 := ctrs.CounterRef(slot)
	if got := ref2.Load(); got != initial+1 {
		t.Fatalf("CounterRef(slot) for the same slot diverged: got %d, want %d", got, initial+1)
	}

	ref2.Store(initial + 2)
	if got := ref1.Load(); got != initial+2 {
		t.Fatalf("two CounterRef handles to the same slot did not observe each other's writes: got %d, want %d", got, initial+2)
	}
}

func TestCounterStore_distinctSlotsDistinctCounters(t *testing.T) {
	ctrs, alloc, _ := newTestCounterStore(t, 960, 32)

	slotA, _ := alloc.AllocBackingSlot()
	slotB, _ := alloc.AllocBackingSlot()

	ctrs.CounterRef(slotA).Store(111)
	ctrs.CounterRef(slotB).Store(222)

	if got := ctrs.CounterRef(slotA).Load(); got != 111 {
		t.Fatalf("slot A counter clobbered: got %d, want 111", got)
	}
	if got := ctrs.CounterRef(slotB).Load(); got != 222 {
		t.Fatalf("slot B counter clobbered: got %d, want 222", got)
	}
}

func TestCounterStore_undersizedDirectoryPanics(t *testing.T) {
	// One slot per indirect page's worth of region guarantees top=0 only
	// unless the directory itself is sized to 0, which Validate already
	// rejects; instead force top >= dirLen by using a region much larger
	// than one directory entry can address through a 1-entry directory.
	cfg := DefaultConfig()
	cfg.CounterDirLen = 1
	cfg.Validate()

	totalPages := cfg.counterSlotsPerPage()*2 + 1 // spans at least 3 indirect pages' worth of slots
	r := region.New(0x6000_0000, totalPages*uint64(cfg.PageSize), cfg.PageSize)
	rnd := pagecrypto.DRBGSource{}
	alloc := NewBackingSlotAllocator(r.Base(), totalPages, cfg.PageSize, rnd, nil)
	ctrs := NewCounterStore(cfg, r.Base(), alloc, r, rnd, nil)

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatalf("expected a panic when the counter directory is too small for the backing region")
		}
		if _, ok := rec.(configPanic); !ok {
			t.Fatalf("expected a configPanic, got %T: %v", rec, rec)
		}
	}()

	// Walk far enough into the region to exceed what a 1-entry directory
	// can address.
	var last uint64
	for i := uint64(0); i < totalPages; i++ {
		addr, ok := alloc.AllocBackingSlot()
		if !ok {
			break
		}
		last = addr
		ctrs.CounterRef(addr)
	}
	_ = last
}
