package validator

import "golang.org/x/crypto/blake2b"

// DefaultMaxLen bounds inputs when no explicit bound is configured. It keeps
// every layer scan and every exhaustive enumeration finite.
const DefaultMaxLen = 256

// Sequence is an immutable, length-bounded byte sequence. Construction copies
// the input, so a Sequence never aliases caller memory.
type Sequence struct {
	data string
}

// NewSequence builds a Sequence, enforcing the length bound.
func NewSequence(b []byte, maxLen int) (Sequence, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	if len(b) > maxLen {
		return Sequence{}, &LengthError{Max: maxLen, Actual: len(b)}
	}
	return Sequence{data: string(b)}, nil
}

// Bytes returns a fresh copy of the underlying bytes.
func (s Sequence) Bytes() []byte {
	return []byte(s.data)
}

// Len returns the byte length.
func (s Sequence) Len() int {
	return len(s.data)
}

// Digest returns a stable identity for the sequence contents. Two sequences
// with equal bytes have equal digests, which is what makes proof tokens
// comparable across validation calls.
func (s Sequence) Digest() [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(s.data))
}
