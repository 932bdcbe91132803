package validator

// charClassLayer validates the contents of `[...]` character classes: a
// class must not be empty, an `a-b` range requires the left endpoint's
// ordinal to be at most the right's, and escapes inside a class consume the
// following byte. A range violation is reported at the left endpoint, per
// the layer's contract of pointing at the first byte that breaks the rule.
//
// In the standard chain this layer only ever sees inputs whose brackets are
// balanced; the unterminated-class check exists so the layer is still total
// when exercised on its own.
type charClassLayer struct{}

func (charClassLayer) ID() LayerID { return LayerCharClass }

func (charClassLayer) Check(b []byte) *Violation {
	i := 0
	for i < len(b) {
		if b[i] == '\\' {
			// escaped byte outside a class, including `\[`
			i += 2
			continue
		}
		if b[i] != '[' {
			i++
			continue
		}
		i++
		if i < len(b) && b[i] == '^' {
			i++
		}
		if i >= len(b) || b[i] == ']' {
			return &Violation{Layer: LayerCharClass, Offset: i, Reason: ReasonEmptyCharClass}
		}
		for i < len(b) && b[i] != ']' {
			if b[i] == '\\' {
				i += 2
				continue
			}
			if i+2 < len(b) && b[i+1] == '-' && b[i+2] != ']' {
				if b[i] > b[i+2] {
					return &Violation{Layer: LayerCharClass, Offset: i, Reason: ReasonCharClassRangeOrder}
				}
				i += 3
				continue
			}
			i++
		}
		if i >= len(b) {
			return &Violation{Layer: LayerCharClass, Offset: len(b), Reason: ReasonUnterminatedCharClass}
		}
		i++ // consume ']'
	}
	return nil
}
