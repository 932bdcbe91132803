package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyLayer records whether it ran and always rejects at a fixed offset.
type spyLayer struct {
	id     LayerID
	calls  *int
	reject bool
}

func (s spyLayer) ID() LayerID { return s.id }

func (s spyLayer) Check(b []byte) *Violation {
	*s.calls++
	if s.reject {
		return &Violation{Layer: s.id, Offset: 0, Reason: ReasonInvalidEscape}
	}
	return nil
}

func TestChainStopsAtFirstViolation(t *testing.T) {
	var first, second, third int
	chain, err := NewChain(
		spyLayer{id: "first", calls: &first},
		spyLayer{id: "second", calls: &second, reject: true},
		spyLayer{id: "third", calls: &third},
	)
	require.NoError(t, err)

	seq, err := NewSequence([]byte("abc"), DefaultMaxLen)
	require.NoError(t, err)

	_, err = chain.Run(seq)
	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, LayerID("second"), v.Layer)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0, third, "layers after the violation must not run")
}

func TestChainRejectsDuplicateLayers(t *testing.T) {
	var n int
	_, err := NewChain(spyLayer{id: "dup", calls: &n}, spyLayer{id: "dup", calls: &n})
	require.Error(t, err)

	_, err = NewChain()
	require.Error(t, err)
}

func TestChainDescribe(t *testing.T) {
	assert.Equal(t,
		"encoding>delimiters>escapes>quantifiers>charclass",
		DefaultChain().Describe())
}

func TestValidateMintsProof(t *testing.T) {
	v := New()

	proof, err := v.Validate([]byte("(abc)"))
	require.NoError(t, err)
	assert.True(t, proof.Valid())
	assert.Equal(t, 5, proof.Length())
	assert.Equal(t, v.Chain().Describe(), proof.Chain())

	seq, err := NewSequence([]byte("(abc)"), DefaultMaxLen)
	require.NoError(t, err)
	assert.True(t, proof.Covers(seq))

	other, err := NewSequence([]byte("(abd)"), DefaultMaxLen)
	require.NoError(t, err)
	assert.False(t, proof.Covers(other))

	assert.False(t, Proof{}.Valid(), "zero proof must be invalid")
}

func TestValidateIsIdempotent(t *testing.T) {
	v := New()
	input := []byte(`a{2,5}[x-z]\d+`)

	first, err := v.Validate(input)
	require.NoError(t, err)
	second, err := v.Validate(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	bad := []byte("[z-a]")
	_, err1 := v.Validate(bad)
	_, err2 := v.Validate(bad)
	require.Error(t, err1)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestValidateRejectionDetails(t *testing.T) {
	v := New()

	cases := []struct {
		name   string
		input  []byte
		layer  LayerID
		offset int
	}{
		{"bad continuation", []byte{0xE1, 0x7F, 0x80}, LayerEncoding, 1},
		{"range out of order", []byte("[z-a]"), LayerCharClass, 1},
		{"bounds out of order", []byte("a{5,3}"), LayerQuantifiers, 1},
		{"dangling close", []byte("ab)"), LayerDelimiters, 2},
		{"bad escape", []byte(`ab\q`), LayerEscapes, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.input)
			var viol *Violation
			require.ErrorAs(t, err, &viol)
			assert.Equal(t, tc.layer, viol.Layer)
			assert.Equal(t, tc.offset, viol.Offset)
		})
	}
}

func TestValidateLengthCap(t *testing.T) {
	v := New(WithMaxLen(4))

	_, err := v.Validate([]byte("abcd"))
	require.NoError(t, err)

	_, err = v.Validate([]byte("abcde"))
	var le *LengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 4, le.Max)
	assert.Equal(t, 5, le.Actual)
	assert.False(t, errors.As(err, new(*Violation)), "no layer runs on oversized input")
}

// Corrupting any single byte of an accepted input and re-validating must
// either still accept or report an offset inside the input.
func TestViolationOffsetsStayInBounds(t *testing.T) {
	v := New()
	base := []byte(`(a[b-d]{2,3}\w)+`)
	_, err := v.Validate(base)
	require.NoError(t, err)

	for pos := 0; pos < len(base); pos++ {
		for _, corrupt := range []byte{0x00, '(', ']', '*', '\\', 0x80, 0xFF} {
			mutated := make([]byte, len(base))
			copy(mutated, base)
			mutated[pos] = corrupt
			_, err := v.Validate(mutated)
			if err == nil {
				continue
			}
			var viol *Violation
			require.ErrorAs(t, err, &viol, "input %q", mutated)
			assert.GreaterOrEqual(t, viol.Offset, 0)
			assert.LessOrEqual(t, viol.Offset, len(mutated))
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	v := New()
	input := []byte(`^(foo|bar){1,3}[a-z0-9]+\.\w*$`)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := v.Validate(input); err != nil {
			b.Fatal(err)
		}
	}
}
