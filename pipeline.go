package paging

import (
	"github.com/luxfi/log"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// Pipeline wires the counter store, BootKey, crypto primitives, and Merkle
// tree into the single PageSwap entry point. It is the only thing external
// callers (typically a trap handler) drive directly, and it is not
// reentrant; callers serialize access.
type Pipeline struct {
	cfg     Config
	backing interfaces.BackingBytes
	epm     interfaces.BackingBytes
	ctrs    *CounterStore
	tree    *Tree
	rnd     interfaces.RandomSource
	cipher  interfaces.Cipher
	hasher  interfaces.Hasher
	accel   interfaces.Accelerator // nil unless a privileged crypto engine is present
	boot    BootKey
	log     log.Logger
}

// NewPipeline assembles a Pipeline. backing and epm may be backed by the
// same interfaces.BackingBytes implementation over disjoint address ranges,
// or by two different ones, as long as both resolve page-sized windows by
// address. Keeping backing addresses inside the backing region and epm
// addresses inside EPM is the caller's responsibility.
func NewPipeline(cfg Config, backing, epm interfaces.BackingBytes, ctrs *CounterStore, tree *Tree, rnd interfaces.RandomSource, cipher interfaces.Cipher, hasher interfaces.Hasher, accel interfaces.Accelerator, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Pipeline{
		cfg:     cfg,
		backing: backing,
		epm:     epm,
		ctrs:    ctrs,
		tree:    tree,
		rnd:     rnd,
		cipher:  cipher,
		hasher:  hasher,
		accel:   accel,
		log:     logger,
	}
}

// PageSwap evicts the EPM page at epm into the backing slot at back,
// optionally restoring swap's prior content into epm first. swap must be 0
// (no restore) or equal to back (restore in place); any other value is a
// caller bug.
//
//	back_page (PA1) <-- epm_page (PA2) <-- swap_page (PA1)
func (p *Pipeline) PageSwap(back, epm uint64, swap uint64) {
	if swap != 0 && swap != back {
		panic("paging: PageSwap: swap must be 0 or equal to back")
	}

	p.boot.Establish(p.rnd)

	ctr := p.ctrs.CounterRef(back)
	ctrOld := ctr.Load()
	ctrNew := ctrOld + 1

	epmBytes := p.epm.BytesAt(epm, p.cfg.PageSize)
	backBytes := p.backing.BytesAt(back, p.cfg.PageSize)

	var hNew [32]byte
	if p.accel != nil {
		if swap != 0 {
			// The swap half: backBytes still holds the prior ciphertext
			// at entry, so EncSwap encrypts the new content out while
			// moving that ciphertext into epmBytes; Dec then decrypts it
			// in place and yields the old-content hash.
			p.accel.EncSwap(epmBytes, backBytes, ctrNew, &hNew)
			var hOld [32]byte
			p.accel.Dec(epmBytes, ctrOld, &hOld)
			ok, _ := p.tree.Verify(back, hOld)
			if !ok {
				panic(integrityPanic{addr: back, err: ErrIntegrityFailure})
			}
		} else {
			p.accel.Enc(epmBytes, backBytes, ctrNew, &hNew)
		}
	} else {
		// Preserve the prior ciphertext before the encrypt overwrites it
		// in place; the restore must decrypt the content that was in
		// back under ctrOld, not whatever is about to be written there.
		var priorCiphertext []byte
		if swap != 0 {
			priorCiphertext = make([]byte, len(backBytes))
			copy(priorCiphertext, backBytes)
		}

		p.hasher.Sum(&hNew, epmBytes, leUint64(ctrNew))
		p.cipher.Encrypt(p.boot.Key(), ctrIV(ctrNew), epmBytes, backBytes)

		if swap != 0 {
			p.cipher.Decrypt(p.boot.Key(), ctrIV(ctrOld), priorCiphertext, epmBytes)
			var hOld [32]byte
			p.hasher.Sum(&hOld, epmBytes, leUint64(ctrOld))
			ok, _ := p.tree.Verify(back, hOld)
			if !ok {
				panic(integrityPanic{addr: back, err: ErrIntegrityFailure})
			}
		}
	}

	p.tree.Insert(back, hNew)
	ctr.Store(ctrNew)
}

// ctrIV assembles the 16-byte cipher IV: zero[0..8] || counter_le[0..8].
func ctrIV(counter uint64) [16]byte {
	var iv [16]byte
	le := leUint64(counter)
	copy(iv[8:], le)
	return iv
}

// leUint64 returns counter's little-endian byte encoding, the form both
// the page hash and the IV construction consume.
func leUint64(counter uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(counter >> (8 * i))
	}
	return b
}
