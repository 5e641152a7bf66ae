package paging

import (
	"testing"

	"github.com/iaclab-hpme/keystone-runtime/pagecrypto"
)

func TestBackingSlotAllocator_visitsEverySlotThenExhausts(t *testing.T) {
	tests := []struct {
		name       string
		totalPages uint64
		pageSize   uint32
	}{
		{name: "small region", totalPages: 17, pageSize: 4096},
		{name: "power of two region", totalPages: 64, pageSize: 4096},
		{name: "minimum region", totalPages: 2, pageSize: 512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewBackingSlotAllocator(0x1000_0000, tt.totalPages, tt.pageSize, pagecrypto.DRBGSource{}, nil)

			seen := make(map[uint64]bool, tt.totalPages)
			for i := uint64(0); i < tt.totalPages; i++ {
				addr, ok := a.AllocBackingSlot()
				if !ok {
					t.Fatalf("AllocBackingSlot() returned ok=false early, at slot %d/%d", i, tt.totalPages)
				}
				if seen[addr] {
					t.Fatalf("AllocBackingSlot() returned duplicate address 0x%x", addr)
				}
				seen[addr] = true
				if (addr-0x1000_0000)%uint64(tt.pageSize) != 0 {
					t.Fatalf("AllocBackingSlot() returned misaligned address 0x%x", addr)
				}
			}
			if uint64(len(seen)) != tt.totalPages {
				t.Fatalf("got %d distinct addresses, want %d", len(seen), tt.totalPages)
			}
			if got := a.RemainingSlots(); got != 0 {
				t.Fatalf("RemainingSlots() = %d, want 0 after a full cycle", got)
			}

			for i := 0; i < 3; i++ {
				if _, ok := a.AllocBackingSlot(); ok {
					t.Fatalf("AllocBackingSlot() returned ok=true after the region was exhausted")
				}
			}
		})
	}
}

func TestGCD(t *testing.T) {
	tests := []struct {
		a, b, want uint64
	}{
		{12, 8, 4},
		{17, 5, 1},
		{0, 5, 5},
		{100, 0, 100},
	}
	for _, tt := range tests {
		if got := gcd(tt.a, tt.b); got != tt.want {
			t.Errorf("gcd(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
