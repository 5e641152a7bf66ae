package paging

import "fmt"

// PagingErr is a small closed enum classifying the core's failures. Tree.Verify
// returns one by value; the other values travel inside panic values
// (integrityPanic, the node pool's allocator panic). The backing allocator
// reports exhaustion with ok=false rather than a PagingErr.
type PagingErr int

const (
	// ErrOk indicates success.
	ErrOk PagingErr = iota
	// ErrExhausted names the condition of the backing allocator having
	// cycled the whole region. Not fatal; caller may evict differently.
	// AllocBackingSlot reports it as ok=false; no operation returns this
	// value.
	ErrExhausted
	// ErrKeyNotFound signals Verify could not find the key in any leaf.
	ErrKeyNotFound
	// ErrIntegrityFailure signals a Merkle hash mismatch at some node on
	// the verify path. Fatal.
	ErrIntegrityFailure
	// ErrConfig signals the counter directory is undersized for the
	// backing region. Callers never see this returned; CounterStore
	// panics with a configPanic on the first offending slot instead, and
	// that panic value does not carry ErrConfig.
	ErrConfig
	// ErrAllocatorFailure signals the node-pool arena could not obtain a
	// fresh chunk. Fatal.
	ErrAllocatorFailure
)

func (e PagingErr) Error() string {
	switch e {
	case ErrOk:
		return "paging: ok"
	case ErrExhausted:
		return "paging: backing region exhausted"
	case ErrKeyNotFound:
		return "paging: key not present in merkle tree"
	case ErrIntegrityFailure:
		return "paging: merkle integrity check failed"
	case ErrConfig:
		return "paging: counter directory too small for backing region"
	case ErrAllocatorFailure:
		return "paging: node pool allocator exhausted"
	default:
		return fmt.Sprintf("paging: unknown error (%d)", int(e))
	}
}

// integrityPanic is raised when a Merkle check fails. Unrecoverable; the
// caller (normally a trap handler) is expected to terminate the enclave. A
// typed panic value lets tests recover() and assert on it rather than
// pattern-matching a string.
type integrityPanic struct {
	addr uint64
	err  PagingErr
}

func (p integrityPanic) Error() string {
	return fmt.Sprintf("paging: fatal integrity failure restoring backing page 0x%x: %v", p.addr, p.err)
}

// configPanic is raised by CounterStore when the counter directory is too
// small for the backing region it was asked to serve.
type configPanic struct {
	msg string
}

func (p configPanic) Error() string { return "paging: " + p.msg }
