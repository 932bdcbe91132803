package validator

import "math"

// quantifierLayer checks that `*`, `+`, `?`, and `{n,m}` each follow a
// quantifiable atom, and that bounded repetitions are well-formed with
// n <= m. The scan keeps a single "was the previous token an atom" bit:
// literals, escapes, and group delimiters produce atoms; anchors,
// alternation, and a consumed quantifier reset the bit.
type quantifierLayer struct{}

func (quantifierLayer) ID() LayerID { return LayerQuantifiers }

func (quantifierLayer) Check(b []byte) *Violation {
	hasAtom := false
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c == '*' || c == '+' || c == '?':
			if !hasAtom {
				return &Violation{Layer: LayerQuantifiers, Offset: i, Reason: ReasonQuantifierWithoutAtom}
			}
			hasAtom = false

		case c == '{' && i+1 < len(b) && isASCIIDigit(b[i+1]):
			if !hasAtom {
				return &Violation{Layer: LayerQuantifiers, Offset: i, Reason: ReasonQuantifierWithoutAtom}
			}
			start := i
			i++
			for i < len(b) && (isASCIIDigit(b[i]) || b[i] == ',') {
				i++
			}
			if i >= len(b) || b[i] != '}' {
				return &Violation{Layer: LayerQuantifiers, Offset: start, Reason: ReasonQuantifierMalformed}
			}
			if !repetitionBoundsOrdered(b[start+1 : i]) {
				return &Violation{Layer: LayerQuantifiers, Offset: start, Reason: ReasonQuantifierBounds}
			}
			hasAtom = false

		case c == '\\':
			if i+1 < len(b) {
				i++ // escaped byte completes the atom
			}
			hasAtom = true

		case c == '(' || c == '[' || c == ')' || c == ']':
			hasAtom = true

		case c == '^' || c == '$' || c == '|':
			hasAtom = false

		default:
			hasAtom = true
		}
		i++
	}
	return nil
}

// repetitionBoundsOrdered validates the digits/comma run between the braces
// of a bounded repetition. `{n}` and `{n,}` are in order whenever the bound
// fits a uint64; `{n,m}` additionally requires n <= m. Bounds too large for
// a uint64 are rejected rather than wrapped. Inputs with multiple commas
// such as `{1,2,3}` are rejected by treating everything after the first
// comma as the upper bound candidate.
func repetitionBoundsOrdered(inner []byte) bool {
	n, i, ok := repetitionBound(inner, 0)
	if !ok {
		return false
	}
	if i >= len(inner) {
		return true // {n}
	}
	// first non-digit is a comma by construction of the caller's scan
	i++
	if i >= len(inner) {
		return true // {n,}
	}
	m, i, ok := repetitionBound(inner, i)
	if !ok {
		return false
	}
	if i < len(inner) {
		return false // second comma: {n,m,...}
	}
	return n <= m
}

// repetitionBound accumulates the decimal digits of one bound starting at i,
// failing on values that overflow a uint64.
func repetitionBound(inner []byte, i int) (uint64, int, bool) {
	var v uint64
	for i < len(inner) && isASCIIDigit(inner[i]) {
		d := uint64(inner[i] - '0')
		if v > (math.MaxUint64-d)/10 {
			return 0, i, false
		}
		v = v*10 + d
		i++
	}
	return v, i, true
}
