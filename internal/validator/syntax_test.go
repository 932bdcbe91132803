package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelimiterLayer(t *testing.T) {
	layer := delimiterLayer{}

	t.Run("accepts", func(t *testing.T) {
		for _, input := range []string{
			"",
			"(abc)",
			"(a(b)c)",
			"[abc]",
			"a{2,5}",
			"x{3}",
			`\(a\)`,
			`\[\]`,
			"(a)[b]{c}",
			"([)]", // kinds balance independently
		} {
			assert.Nil(t, layer.Check([]byte(input)), "input %q", input)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		cases := []struct {
			input  string
			offset int
			kind   byte
		}{
			{"(abc", 0, '('},
			{"abc)", 3, ')'},
			{"[abc", 0, '['},
			{"abc]", 3, ']'},
			{"{abc", 0, '{'},
			{"abc}", 3, '}'},
			{"((a)", 0, '('},
			{"(a))", 3, ')'},
			{"ab(cd[e", 2, '('}, // parens are reported before brackets
			{`\((`, 2, '('},
		}
		for _, tc := range cases {
			v := layer.Check([]byte(tc.input))
			require.NotNil(t, v, "input %q", tc.input)
			assert.Equal(t, LayerDelimiters, v.Layer)
			assert.Equal(t, ReasonUnbalancedDelimiter, v.Reason)
			assert.Equal(t, tc.offset, v.Offset, "input %q", tc.input)
			assert.Equal(t, tc.kind, v.Kind, "input %q", tc.input)
		}
	})

	t.Run("quantifier braces are not groups", func(t *testing.T) {
		assert.Nil(t, layer.Check([]byte("a{2,5}")))
		assert.Nil(t, layer.Check([]byte("a{10}")))
		// '{' followed by a non-digit is a group delimiter
		v := layer.Check([]byte("a{x"))
		require.NotNil(t, v)
		assert.Equal(t, 1, v.Offset)
		assert.Equal(t, byte('{'), v.Kind)
	})
}

func TestEscapeLayer(t *testing.T) {
	layer := escapeLayer{}

	t.Run("accepts", func(t *testing.T) {
		for _, input := range []string{
			"",
			"abc",
			`\n\t\r`,
			`\d\D\w\W\s\S`,
			`\.\*\+\?\(\)\[\]\{\}`,
			`\^\$\|\\`,
			`\1\9\0`,
			`a\nb`,
		} {
			assert.Nil(t, layer.Check([]byte(input)), "input %q", input)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		cases := []struct {
			input  string
			offset int
		}{
			{`\x`, 1},
			{`\e`, 1},
			{`ab\q`, 3},
			{`\`, 0},
			{`abc\`, 3},
			{`\\\`, 2},
		}
		for _, tc := range cases {
			v := layer.Check([]byte(tc.input))
			require.NotNil(t, v, "input %q", tc.input)
			assert.Equal(t, LayerEscapes, v.Layer)
			assert.Equal(t, ReasonInvalidEscape, v.Reason)
			assert.Equal(t, tc.offset, v.Offset, "input %q", tc.input)
		}
	})
}

func TestQuantifierLayer(t *testing.T) {
	layer := quantifierLayer{}

	t.Run("accepts", func(t *testing.T) {
		for _, input := range []string{
			"",
			"a*",
			"a+",
			"a?",
			"a{3}",
			"a{2,}",
			"a{2,5}",
			"(ab)*",
			"[xy]+",
			`\d?`,
			"a*b+c?",
			"^a*$",
			"a{0,0}",
			"a{}",                     // brace without digits is a literal here
			"a{18446744073709551615}", // largest bound a uint64 holds
			"a{18446744073709551615,18446744073709551615}",
		} {
			assert.Nil(t, layer.Check([]byte(input)), "input %q", input)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		cases := []struct {
			input  string
			offset int
			reason Reason
		}{
			{"*a", 0, ReasonQuantifierWithoutAtom},
			{"+", 0, ReasonQuantifierWithoutAtom},
			{"?x", 0, ReasonQuantifierWithoutAtom},
			{"a**", 2, ReasonQuantifierWithoutAtom},
			{"^*", 1, ReasonQuantifierWithoutAtom},
			{"a|*", 2, ReasonQuantifierWithoutAtom},
			{"{3}", 0, ReasonQuantifierWithoutAtom},
			{"a{3", 1, ReasonQuantifierMalformed},
			{"a{3,5", 1, ReasonQuantifierMalformed},
			{"a{5,3}", 1, ReasonQuantifierBounds},
			{"a{1,2,3}", 1, ReasonQuantifierBounds},
			{"a{18446744073709551616}", 1, ReasonQuantifierBounds},
			{"a{18446744073709551616,}", 1, ReasonQuantifierBounds},
			{"a{18446744073709551616,1}", 1, ReasonQuantifierBounds},
			{"a{1,18446744073709551616}", 1, ReasonQuantifierBounds},
			{"a{99999999999999999999,99999999999999999999}", 1, ReasonQuantifierBounds},
		}
		for _, tc := range cases {
			v := layer.Check([]byte(tc.input))
			require.NotNil(t, v, "input %q", tc.input)
			assert.Equal(t, LayerQuantifiers, v.Layer)
			assert.Equal(t, tc.reason, v.Reason, "input %q", tc.input)
			assert.Equal(t, tc.offset, v.Offset, "input %q", tc.input)
		}
	})
}

func TestCharClassLayer(t *testing.T) {
	layer := charClassLayer{}

	t.Run("accepts", func(t *testing.T) {
		for _, input := range []string{
			"",
			"abc",
			"[a]",
			"[abc]",
			"[a-z]",
			"[a-zA-Z0-9]",
			"[^abc]",
			"[^a-z]",
			"[a-]",  // trailing dash is a literal
			"[-a]",  // leading dash is a literal
			`[\]]`,  // escaped bracket inside a class
			`[\d-]`, // escape then literal dash
			"[a][b]",
		} {
			assert.Nil(t, layer.Check([]byte(input)), "input %q", input)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		cases := []struct {
			input  string
			offset int
			reason Reason
		}{
			{"[]", 1, ReasonEmptyCharClass},
			{"[^]", 2, ReasonEmptyCharClass},
			{"[z-a]", 1, ReasonCharClassRangeOrder},
			{"[9-0]", 1, ReasonCharClassRangeOrder},
			{"x[b-a]", 2, ReasonCharClassRangeOrder},
			{"[abc", 4, ReasonUnterminatedCharClass},
			{"[a-z", 4, ReasonUnterminatedCharClass},
		}
		for _, tc := range cases {
			v := layer.Check([]byte(tc.input))
			require.NotNil(t, v, "input %q", tc.input)
			assert.Equal(t, LayerCharClass, v.Layer)
			assert.Equal(t, tc.reason, v.Reason, "input %q", tc.input)
			assert.Equal(t, tc.offset, v.Offset, "input %q", tc.input)
		}
	})
}
