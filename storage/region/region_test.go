package region

import "testing"

func TestRegion_bytesAtAliasesStorage(t *testing.T) {
	r := New(0x1000, 4*4096, 4096)

	a := r.BytesAt(0x1000+4096, 4096)
	b := r.BytesAt(0x1000+4096, 4096)

	a[0] = 0xEE
	if b[0] != 0xEE {
		t.Fatalf("two BytesAt views of the same address do not alias the same storage")
	}
}

func TestRegion_inBounds(t *testing.T) {
	r := New(0x1000, 4*4096, 4096)

	tests := []struct {
		addr uint64
		want bool
	}{
		{0x1000, true},
		{0x1000 + 4096, true},
		{0x1000 + 3*4096, true},
		{0x1000 + 4*4096, false}, // one past the end
		{0x0FFF, false},          // below the base
		{0x1000 + 100, false},    // inside, but misaligned
	}
	for _, tt := range tests {
		if got := r.InBounds(tt.addr); got != tt.want {
			t.Errorf("InBounds(0x%x) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestRegion_bytesAtOutOfBoundsPanics(t *testing.T) {
	r := New(0x1000, 2*4096, 4096)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected BytesAt past the region end to panic")
		}
	}()
	r.BytesAt(0x1000+4096+1, 4096)
}

func TestRegion_sizeMustBePageMultiple(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected New with a non-page-multiple size to panic")
		}
	}()
	New(0x1000, 4096+100, 4096)
}
