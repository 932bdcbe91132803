package validator

// encodingLayer validates the UTF-8 structural grammar: a leading byte
// declares a sequence length of 1-4 bytes, every following byte must be a
// continuation in [0x80, 0xBF], and encodings that are overlong, encode a
// surrogate, or exceed U+10FFFF are rejected.
//
// Offsets: a bad leading or continuation byte is reported at its own offset;
// overlong, surrogate, and out-of-range sequences are reported at the leading
// byte, because the individual bytes are well-formed and only the sequence as
// declared is invalid. A sequence truncated by end of input is reported at
// the first missing continuation position, which is len(b).
type encodingLayer struct{}

func (encodingLayer) ID() LayerID { return LayerEncoding }

func (encodingLayer) Check(b []byte) *Violation {
	i := 0
	for i < len(b) {
		lead := b[i]
		switch {
		case lead < 0x80:
			// ASCII
			i++

		case lead < 0xC0:
			// continuation byte in leading position
			return &Violation{Layer: LayerEncoding, Offset: i, Reason: ReasonBadLeadingByte}

		case lead < 0xC2:
			// 0xC0/0xC1 can only encode code points below 0x80
			return &Violation{Layer: LayerEncoding, Offset: i, Reason: ReasonOverlongEncoding}

		case lead < 0xE0:
			// two bytes: 110xxxxx 10xxxxxx
			if v := continuation(b, i+1, 0x80, 0xBF); v != nil {
				return v
			}
			i += 2

		case lead < 0xF0:
			// three bytes: 1110xxxx 10xxxxxx 10xxxxxx
			lo, hi := byte(0x80), byte(0xBF)
			reason := Reason("")
			switch lead {
			case 0xE0:
				lo, reason = 0xA0, ReasonOverlongEncoding
			case 0xED:
				hi, reason = 0x9F, ReasonSurrogateRange
			}
			if v := windowed(b, i, 1, lo, hi, reason); v != nil {
				return v
			}
			if v := continuation(b, i+2, 0x80, 0xBF); v != nil {
				return v
			}
			i += 3

		case lead < 0xF5:
			// four bytes: 11110xxx 10xxxxxx 10xxxxxx 10xxxxxx
			lo, hi := byte(0x80), byte(0xBF)
			reason := Reason("")
			switch lead {
			case 0xF0:
				lo, reason = 0x90, ReasonOverlongEncoding
			case 0xF4:
				hi, reason = 0x8F, ReasonCodePointRange
			}
			if v := windowed(b, i, 1, lo, hi, reason); v != nil {
				return v
			}
			if v := continuation(b, i+2, 0x80, 0xBF); v != nil {
				return v
			}
			if v := continuation(b, i+3, 0x80, 0xBF); v != nil {
				return v
			}
			i += 4

		case lead < 0xF8:
			// 0xF5-0xF7 declare code points above U+10FFFF
			return &Violation{Layer: LayerEncoding, Offset: i, Reason: ReasonCodePointRange}

		default:
			// 0xF8-0xFF are not valid leading bytes in any form
			return &Violation{Layer: LayerEncoding, Offset: i, Reason: ReasonBadLeadingByte}
		}
	}
	return nil
}

// continuation checks that b[pos] exists and is a continuation byte in
// [lo, hi]. Truncation reports offset len(b).
func continuation(b []byte, pos int, lo, hi byte) *Violation {
	if pos >= len(b) {
		return &Violation{Layer: LayerEncoding, Offset: len(b), Reason: ReasonBadContinuation}
	}
	if b[pos] < lo || b[pos] > hi {
		return &Violation{Layer: LayerEncoding, Offset: pos, Reason: ReasonBadContinuation}
	}
	return nil
}

// windowed checks the constrained continuation byte directly after a leading
// byte. A byte that is a well-formed continuation but falls outside the
// narrowed [lo, hi] window is attributed to the leading byte at offset lead
// with the sequence-level reason (overlong, surrogate, or out of range).
func windowed(b []byte, lead, rel int, lo, hi byte, reason Reason) *Violation {
	pos := lead + rel
	if pos >= len(b) {
		return &Violation{Layer: LayerEncoding, Offset: len(b), Reason: ReasonBadContinuation}
	}
	c := b[pos]
	if c < 0x80 || c > 0xBF {
		return &Violation{Layer: LayerEncoding, Offset: pos, Reason: ReasonBadContinuation}
	}
	if c < lo || c > hi {
		return &Violation{Layer: LayerEncoding, Offset: lead, Reason: reason}
	}
	return nil
}
