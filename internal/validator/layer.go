package validator

// Layer is a single structural predicate over a byte sequence. Layers are
// stateless and pure: Check allocates nothing on the accept path and holds no
// state between calls.
//
// Layers must be structurally independent: a layer never re-examines a
// condition an earlier layer in its chain already guarantees. That property
// is what keeps each layer's state space small enough to verify exhaustively.
type Layer interface {
	ID() LayerID
	// Check returns nil on acceptance, or the first violation found.
	Check(b []byte) *Violation
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
