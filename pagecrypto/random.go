// Package pagecrypto provides the default implementations of the
// cryptographic externals the paging core consumes: a cryptographic RNG, a
// 256-bit hash (software and accelerated variants), and a counter-mode
// page cipher. These are the abstract primitives the pipeline drives, not
// part of the paging logic itself.
package pagecrypto

import (
	"github.com/sixafter/nanoid/x/crypto/ctrdrbg"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// DRBGSource fills buffers from a NIST SP 800-90A AES-CTR-DRBG
// (github.com/sixafter/nanoid/x/crypto/ctrdrbg), used for BootKey
// generation, counter-page random initialization, and stride selection.
type DRBGSource struct{}

var _ interfaces.RandomSource = DRBGSource{}

// Fill reads len(buf) cryptographically secure random bytes into buf.
// ctrdrbg.Reader is a package-level pool-backed reader safe for concurrent
// use; a short read or error here means the process's entropy source is
// broken, which is unrecoverable for a subsystem whose entire security
// model rests on fresh counters and keys, so we panic rather than return a
// partially-random buffer.
func (DRBGSource) Fill(buf []byte) {
	n, err := ctrdrbg.Reader.Read(buf)
	if err != nil || n != len(buf) {
		panic("pagecrypto: failed to obtain random bytes from ctrdrbg")
	}
}
