package paging

import "crypto/subtle"

// Verify checks that key currently maps to hash in the tree, recomputing
// and checking every node's Merkle hash along the descent path. A hash
// mismatch at any level is a fatal integrity failure; a missing key is
// reported to the caller rather than panicking, since an absent mapping is
// an ordinary outcome. The leaf-value comparison covers all 32 bytes
// unconditionally so timing does not reveal which position matched.
func (t *Tree) Verify(key uint64, hash [32]byte) (bool, PagingErr) {
	node := t.root
	for {
		var want [32]byte
		t.recomputeHash(node, &want)
		if want != node.hash {
			panic(integrityPanic{addr: key, err: ErrIntegrityFailure})
		}

		if node.isLeaf {
			for i := 0; i < node.validNum; i++ {
				if node.pivot[i] == key {
					match := subtle.ConstantTimeCompare(node.value[i][:], hash[:]) == 1
					return match, ErrOk
				}
			}
			return false, ErrKeyNotFound
		}

		j := findChildIndex(node, key)
		node = node.children[j]
	}
}
