package paging

import (
	"sync/atomic"

	"github.com/iaclab-hpme/keystone-runtime/interfaces"
)

// BootKey is the 32-byte confidentiality secret established exactly once at
// first use. It never persists across reboots; every boot derives a fresh
// key.
//
// Establishment is a single-writer-single-winner race: a goroutine that
// observes the key unset generates its own candidate, races to claim a
// reservation flag with an atomic test-and-set, and either becomes the
// writer (publishes its candidate, then flips the "set" flag) or loses and
// spins until the winner's key is visible.
type BootKey struct {
	reserved atomic.Bool
	set      atomic.Bool
	key      [32]byte
}

// Establish ensures the key is present, generating one from rnd if this is
// the first call from any goroutine. It is safe to call concurrently; only
// one call's candidate bytes are ever published.
func (k *BootKey) Establish(rnd interfaces.RandomSource) {
	if k.set.Load() {
		return
	}

	var candidate [32]byte
	rnd.Fill(candidate[:])

	if k.reserved.CompareAndSwap(false, true) {
		// Won the race: publish our candidate, then signal readiness.
		k.key = candidate
		k.set.Store(true)
		return
	}

	// Lost the race: another goroutine is publishing. Spin until its key
	// is visible. This is the subsystem's only suspension point.
	for !k.set.Load() {
	}
}

// Key returns the established key. Callers must have called Establish
// first; accessors do not re-check.
func (k *BootKey) Key() [32]byte {
	return k.key
}
