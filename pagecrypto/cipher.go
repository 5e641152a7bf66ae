package pagecrypto

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// AESCTR is the default Cipher: AES-256 run in counter mode over one page,
// built on crypto/aes + crypto/cipher, the same primitive DRBGSource's
// ctrdrbg is built from.
type AESCTR struct{}

var _ interfaces.Cipher = AESCTR{}

func (AESCTR) Encrypt(key [32]byte, iv [16]byte, src, dst []byte) {
	streamXOR(key, iv, src, dst)
}

func (AESCTR) Decrypt(key [32]byte, iv [16]byte, src, dst []byte) {
	// CTR mode is its own inverse.
	streamXOR(key, iv, src, dst)
}

func streamXOR(key [32]byte, iv [16]byte, src, dst []byte) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		// key is always exactly 32 bytes; this can only fail if the
		// standard library itself is broken.
		panic("pagecrypto: aes.NewCipher: " + err.Error())
	}
	stream := cipher.NewCTR(block, iv[:])
	stream.XORKeyStream(dst, src)
}

// Passthrough is the non-confidential Cipher: a plain byte copy. The
// counter is still consumed by the hash even though it plays no
// cryptographic role here.
type Passthrough struct{}

var _ interfaces.Cipher = Passthrough{}

func (Passthrough) Encrypt(_ [32]byte, _ [16]byte, src, dst []byte) { copy(dst, src) }
func (Passthrough) Decrypt(_ [32]byte, _ [16]byte, src, dst []byte) { copy(dst, src) }
