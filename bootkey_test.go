package paging

import (
	"sync"
	"testing"

	"github.com/iaclab-hpme/keystone-runtime/pagecrypto"
)

func TestBootKey_establishOnce(t *testing.T) {
	var k BootKey
	rnd := pagecrypto.DRBGSource{}

	k.Establish(rnd)
	first := k.Key()
	if first == ([32]byte{}) {
		t.Fatalf("established key is all zeros; the RNG was never consulted")
	}

	k.Establish(rnd)
	if k.Key() != first {
		t.Fatalf("second Establish replaced an already-published key")
	}
}

func TestBootKey_concurrentEstablishSingleWinner(t *testing.T) {
	var k BootKey
	rnd := pagecrypto.DRBGSource{}

	const racers = 16
	keys := make([][32]byte, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			k.Establish(rnd)
			keys[i] = k.Key()
		}(i)
	}
	wg.Wait()

	for i := 1; i < racers; i++ {
		if keys[i] != keys[0] {
			t.Fatalf("racer %d observed a different key than racer 0; the one-shot race leaked two candidates", i)
		}
	}
}
