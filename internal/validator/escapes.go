package validator

// escapeLayer checks that every `\` introducer is followed by a byte from the
// fixed allowed-follower set. A bad follower is reported at the follower's
// offset; a trailing `\` with nothing after it is reported at the introducer.
type escapeLayer struct{}

func (escapeLayer) ID() LayerID { return LayerEscapes }

func (escapeLayer) Check(b []byte) *Violation {
	i := 0
	for i < len(b) {
		if b[i] != '\\' {
			i++
			continue
		}
		if i+1 >= len(b) {
			return &Violation{Layer: LayerEscapes, Offset: i, Reason: ReasonInvalidEscape}
		}
		if !validEscapeFollower(b[i+1]) {
			return &Violation{Layer: LayerEscapes, Offset: i + 1, Reason: ReasonInvalidEscape}
		}
		i += 2
	}
	return nil
}

// validEscapeFollower reports whether c may directly follow a backslash:
// character-class shorthands, anchors, literal metacharacters, control
// escapes, and backreference digits.
func validEscapeFollower(c byte) bool {
	switch c {
	case 'n', 't', 'r',
		'd', 'D', 'w', 'W', 's', 'S',
		'.', '*', '+', '?', '(', ')', '[', ']', '{', '}',
		'^', '$', '|', '\\':
		return true
	}
	return isASCIIDigit(c)
}
