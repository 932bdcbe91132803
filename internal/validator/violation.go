package validator

import "fmt"

// LayerID names one constraint layer in the chain.
type LayerID string

const (
	LayerEncoding    LayerID = "encoding"
	LayerDelimiters  LayerID = "delimiters"
	LayerEscapes     LayerID = "escapes"
	LayerQuantifiers LayerID = "quantifiers"
	LayerCharClass   LayerID = "charclass"
)

// Reason is a stable machine-readable code for why a layer rejected an input.
type Reason string

const (
	// encoding layer
	ReasonBadLeadingByte   Reason = "bad_leading_byte"
	ReasonBadContinuation  Reason = "bad_continuation_byte"
	ReasonOverlongEncoding Reason = "overlong_encoding"
	ReasonSurrogateRange   Reason = "surrogate_range"
	ReasonCodePointRange   Reason = "code_point_out_of_range"

	// delimiter layer
	ReasonUnbalancedDelimiter Reason = "unbalanced_delimiter"

	// escape layer
	ReasonInvalidEscape Reason = "invalid_escape"

	// quantifier layer
	ReasonQuantifierWithoutAtom Reason = "quantifier_without_atom"
	ReasonQuantifierMalformed   Reason = "malformed_quantifier"
	ReasonQuantifierBounds      Reason = "quantifier_bounds_out_of_order"

	// character class layer
	ReasonEmptyCharClass        Reason = "empty_char_class"
	ReasonCharClassRangeOrder   Reason = "char_class_range_out_of_order"
	ReasonUnterminatedCharClass Reason = "unterminated_char_class"
)

// Violation attributes a rejection to exactly one layer and one byte offset.
// It is the only error a layer check produces; a rejection is never a vague
// aggregate failure.
type Violation struct {
	Layer  LayerID
	Offset int
	Reason Reason
	// Kind carries the delimiter byte for ReasonUnbalancedDelimiter and is
	// zero otherwise.
	Kind byte
}

func (v *Violation) Error() string {
	if v.Kind != 0 {
		return fmt.Sprintf("%s: %s %q at offset %d", v.Layer, v.Reason, v.Kind, v.Offset)
	}
	return fmt.Sprintf("%s: %s at offset %d", v.Layer, v.Reason, v.Offset)
}

// LengthError reports an input longer than the validator's bound. It is
// raised before any layer runs, so it carries no layer attribution.
type LengthError struct {
	Max    int
	Actual int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("length %d exceeds bound %d", e.Actual, e.Max)
}
