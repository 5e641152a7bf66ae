// Package region provides the default backing-byte storage the paging core
// reads and writes pages through. Evicted EPM pages and the Merkle node
// pool / counter table's own metadata pages all live in the same byte
// space this package represents.
package region

import (
	"github.com/dsnet/golib/memfile"
	"github.com/ncw/directio"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// Region is an in-memory stand-in for the untrusted backing region. A real
// deployment would back this with attacker-controlled DRAM reachable only
// through physical addresses; here the same page-granular addressing is
// modeled over an in-memory file (github.com/dsnet/golib/memfile).
type Region struct {
	base     uint64
	size     uint64
	pageSize uint32
	f        *memfile.File
}

var _ interfaces.BackingBytes = (*Region)(nil)

// New allocates a Region of the given size (bytes, must be a multiple of
// pageSize) starting at base. base is an opaque address offset, not a real
// physical address; it only needs to be distinguishable from the EPM
// address space callers use for the "epm" side of a page_swap.
func New(base uint64, size uint64, pageSize uint32) *Region {
	if size%uint64(pageSize) != 0 {
		panic("region: size must be a multiple of pageSize")
	}
	// directio.AlignedBlock keeps the backing buffer itself page-aligned,
	// so every slot offset stays aligned end to end.
	buf := directio.AlignedBlock(int(size))
	return &Region{
		base:     base,
		size:     size,
		pageSize: pageSize,
		f:        memfile.New(buf),
	}
}

// Size returns the region size in bytes.
func (r *Region) Size() uint64 { return r.size }

// Base returns the region's starting address.
func (r *Region) Base() uint64 { return r.base }

// PageSize returns the configured page size.
func (r *Region) PageSize() uint32 { return r.pageSize }

// InBounds reports whether addr is a page-aligned address inside the
// region.
func (r *Region) InBounds(addr uint64) bool {
	if addr < r.base || addr >= r.base+r.size {
		return false
	}
	return (addr-r.base)%uint64(r.pageSize) == 0
}

// BytesAt returns a live slice of n bytes at addr, implementing
// interfaces.BackingBytes. The slice aliases the region's storage directly;
// writes through it are visible to every other holder of the same address.
func (r *Region) BytesAt(addr uint64, n uint32) []byte {
	if addr < r.base || addr+uint64(n) > r.base+r.size {
		panic("region: address out of bounds")
	}
	off := addr - r.base
	return r.f.Bytes()[off : off+uint64(n)]
}
