package validator

// delimiterLayer checks that the three bracket kinds are balanced: each
// kind's counter never goes negative and ends at zero. The kinds are counted
// independently, escaped delimiters are skipped, and braces that open or
// close a `{n,m}` quantifier are not group delimiters.
//
// Auxiliary state is O(1): three counters plus, per kind, the offset where
// the counter last left zero. That offset is where an end-of-input imbalance
// is reported.
type delimiterLayer struct{}

func (delimiterLayer) ID() LayerID { return LayerDelimiters }

func (delimiterLayer) Check(b []byte) *Violation {
	var paren, bracket, brace int
	var parenAt, bracketAt, braceAt int

	i := 0
	for i < len(b) {
		switch b[i] {
		case '\\':
			if i+1 < len(b) {
				i++ // the escaped byte is not a delimiter
			}
		case '(':
			if paren == 0 {
				parenAt = i
			}
			paren++
		case ')':
			paren--
			if paren < 0 {
				return &Violation{Layer: LayerDelimiters, Offset: i, Reason: ReasonUnbalancedDelimiter, Kind: ')'}
			}
		case '[':
			if bracket == 0 {
				bracketAt = i
			}
			bracket++
		case ']':
			bracket--
			if bracket < 0 {
				return &Violation{Layer: LayerDelimiters, Offset: i, Reason: ReasonUnbalancedDelimiter, Kind: ']'}
			}
		case '{':
			if i+1 < len(b) && isASCIIDigit(b[i+1]) {
				break // quantifier opener, not a group
			}
			if brace == 0 {
				braceAt = i
			}
			brace++
		case '}':
			if isQuantifierEnd(b, i) {
				break
			}
			brace--
			if brace < 0 {
				return &Violation{Layer: LayerDelimiters, Offset: i, Reason: ReasonUnbalancedDelimiter, Kind: '}'}
			}
		}
		i++
	}

	switch {
	case paren > 0:
		return &Violation{Layer: LayerDelimiters, Offset: parenAt, Reason: ReasonUnbalancedDelimiter, Kind: '('}
	case bracket > 0:
		return &Violation{Layer: LayerDelimiters, Offset: bracketAt, Reason: ReasonUnbalancedDelimiter, Kind: '['}
	case brace > 0:
		return &Violation{Layer: LayerDelimiters, Offset: braceAt, Reason: ReasonUnbalancedDelimiter, Kind: '{'}
	}
	return nil
}

// isQuantifierEnd reports whether the '}' at pos closes a quantifier like
// {3,5}: the nearest preceding byte that is not a digit or comma must be '{'.
func isQuantifierEnd(b []byte, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		c := b[i]
		if c == '{' {
			return true
		}
		if !isASCIIDigit(c) && c != ',' {
			return false
		}
	}
	return false
}
