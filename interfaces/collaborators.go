// Package interfaces declares the external collaborators the paging core
// relies on but does not implement itself: the raw backing-byte store, the
// cryptographic primitives, and the optional accelerator bridge. Concrete
// implementations live under storage/ and pagecrypto/.
package interfaces

// BackingBytes gives read/write access to a page-sized window of the
// untrusted backing region at a given address. Implementations must treat
// addr as an opaque page-aligned offset; callers never assume anything about
// how the bytes are stored underneath.
type BackingBytes interface {
	// BytesAt returns a slice of length n aliasing the live backing storage
	// at addr. Mutating the slice mutates the backing region in place.
	BytesAt(addr uint64, n uint32) []byte
}

// BackingPageSource is the paging layer's page allocator. It returns a
// fresh page-aligned address each call, or ok=false once the backing
// region has been fully cycled. The same source backs both evicted-page
// slots (via the scrambling allocator) and the Merkle node pool / counter
// table's own metadata pages.
type BackingPageSource interface {
	AllocBackingPage() (addr uint64, ok bool)
}

// RandomSource is the cryptographic RNG external.
type RandomSource interface {
	Fill(buf []byte)
}

// Hasher is the 256-bit cryptographic hash external. Implementations must
// be pure: same input, same output.
type Hasher interface {
	Sum(dst *[32]byte, chunks ...[]byte)
}

// Cipher is the counter-mode block cipher external. iv is the full 16-byte
// IV already assembled by the caller (zero[0..8] || counter_le[0..8]).
type Cipher interface {
	Encrypt(key [32]byte, iv [16]byte, src, dst []byte)
	Decrypt(key [32]byte, iv [16]byte, src, dst []byte)
}

// Accelerator models the optional privileged hash/cipher engine. When
// present, the pipeline fuses encrypt-and-hash (or decrypt-and-hash) into a
// single privileged call instead of driving Cipher and Hasher separately.
// srcPage/dstPage are page-sized byte views; mac receives the 32-byte page
// hash/MAC.
type Accelerator interface {
	// Enc encrypts srcPage's content into dstPage under counter, writing
	// H(srcPage || counter_le) into mac.
	Enc(srcPage, dstPage []byte, counter uint64, mac *[32]byte)
	// Dec decrypts dstPage in place under counter, writing
	// H(plaintext || counter_le) into mac.
	Dec(dstPage []byte, counter uint64, mac *[32]byte)
	// EncSwap atomically swaps the pages' contents while encrypting the
	// outgoing one. Before the call, epmPage holds the new plaintext to
	// evict and backPage holds the prior ciphertext. After the call,
	// backPage holds the new ciphertext (epmPage's pre-call content
	// encrypted under counter, hashed into mac) and epmPage holds the
	// prior ciphertext verbatim; callers follow up with Dec to recover
	// the prior plaintext and its hash.
	EncSwap(epmPage, backPage []byte, counter uint64, mac *[32]byte)
}
