package pagecrypto

import (
	"crypto/sha256"
	"hash"

	sha256simd "github.com/minio/sha256-simd"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// Hash is the default Hasher. It wraps either the SIMD-accelerated
// github.com/minio/sha256-simd implementation or the standard library's
// software crypto/sha256, selected once at construction so callers can
// pick per-process without a build tag.
type Hash struct {
	newState func() hash.Hash
}

var _ interfaces.Hasher = Hash{}

// NewHash returns a Hasher. accelerated selects sha256-simd; otherwise the
// plain standard-library implementation is used. Both produce identical
// digests for identical input; sha256-simd is a drop-in.
func NewHash(accelerated bool) Hash {
	if accelerated {
		return Hash{newState: func() hash.Hash { return sha256simd.New() }}
	}
	return Hash{newState: sha256.New}
}

// Sum hashes the concatenation of chunks into dst.
func (h Hash) Sum(dst *[32]byte, chunks ...[]byte) {
	st := h.newState()
	for _, c := range chunks {
		st.Write(c)
	}
	st.Sum(dst[:0])
}
