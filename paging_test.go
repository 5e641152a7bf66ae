package paging

import (
	"bytes"
	"testing"

	"github.com/iaclab-hpme/keystone-runtime/storage/region"
)

func TestInit_wiresWorkingSystem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Accelerated = false

	backing := region.New(0xE000_0000, 32*uint64(cfg.PageSize), cfg.PageSize)
	epm := region.New(0xF000_0000, uint64(cfg.PageSize), cfg.PageSize)

	sys := Init(cfg, backing, epm, backing.Base(), 32, nil, nil)

	back, ok := sys.Allocator.AllocBackingSlot()
	if !ok {
		t.Fatalf("AllocBackingSlot() failed on a fresh region")
	}

	epmBytes := epm.BytesAt(epm.Base(), cfg.PageSize)
	for i := range epmBytes {
		epmBytes[i] = 0x5A
	}

	sys.Pipeline.PageSwap(back, epm.Base(), 0)
	for i := range epmBytes {
		epmBytes[i] = 0
	}
	sys.Pipeline.PageSwap(back, epm.Base(), back)

	want := bytes.Repeat([]byte{0x5A}, int(cfg.PageSize))
	if !bytes.Equal(epmBytes, want) {
		t.Fatalf("system assembled by Init did not round-trip a page")
	}
}
