// Package reference holds an independently written acceptance oracle for the
// byte-sequence grammar. It is deliberately implemented without reusing any
// of the layer code: UTF-8 validity comes from the standard library, and the
// syntax checks are a single sequential scanner. Verification campaigns
// compare the layer chain against this package byte space by byte space, so
// the two implementations must agree everywhere and must never share code.
package reference

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const escapeFollowers = `ntrdDwWsS.*+?()[]{}^$|\0123456789`

// ValidUTF8 reports well-formed UTF-8 per the standard library.
func ValidUTF8(b []byte) bool { return utf8.Valid(b) }

// Accepts reports whether b is accepted by the full grammar: well-formed
// UTF-8 and every syntax rule.
func Accepts(b []byte) bool {
	return utf8.Valid(b) && Escapes(b) && Delimiters(b) && Quantifiers(b) && CharClasses(b)
}

// Syntax reports whether b passes every syntax rule, ignoring encoding.
func Syntax(b []byte) bool {
	return Escapes(b) && Delimiters(b) && Quantifiers(b) && CharClasses(b)
}

// escapedAt marks every byte position that is consumed as an escape
// follower. A backslash that is itself escaped does not introduce an escape.
func escapedAt(b []byte) []bool {
	marks := make([]bool, len(b))
	i := 0
	for i < len(b) {
		if b[i] == '\\' && i+1 < len(b) {
			marks[i+1] = true
			i += 2
			continue
		}
		i++
	}
	return marks
}

// Escapes reports whether every backslash is followed by an allowed byte.
func Escapes(b []byte) bool {
	i := 0
	for i < len(b) {
		if b[i] != '\\' {
			i++
			continue
		}
		if i+1 >= len(b) {
			return false
		}
		if strings.IndexByte(escapeFollowers, b[i+1]) < 0 {
			return false
		}
		i += 2
	}
	return true
}

// Delimiters reports whether parentheses, brackets, and braces are each
// balanced, skipping escaped delimiters and quantifier braces. A brace
// closes a quantifier when the nearest preceding byte that is not a digit
// or comma is an opening brace; the scanner tracks that byte as it goes
// instead of looking backward.
func Delimiters(b []byte) bool {
	escaped := escapedAt(b)
	depth := map[byte]int{'(': 0, '[': 0, '{': 0}
	var lastSignificant byte

	for i := 0; i < len(b); i++ {
		c := b[i]
		if !escaped[i] {
			ok := true
			switch c {
			case '(', '[':
				depth[c]++
			case ')':
				depth['(']--
				ok = depth['('] >= 0
			case ']':
				depth['[']--
				ok = depth['['] >= 0
			case '{':
				if i+1 >= len(b) || b[i+1] < '0' || b[i+1] > '9' {
					depth['{']++
				}
			case '}':
				if lastSignificant != '{' {
					depth['{']--
					ok = depth['{'] >= 0
				}
			}
			if !ok {
				return false
			}
		}
		if (c < '0' || c > '9') && c != ',' {
			lastSignificant = c
		}
	}
	return depth['('] == 0 && depth['['] == 0 && depth['{'] == 0
}

// Quantifiers reports whether every quantifier follows a quantifiable atom
// and every bounded repetition is well-formed with its bounds in order.
func Quantifiers(b []byte) bool {
	atom := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == '\\' {
			if i+1 < len(b) {
				i++
			}
			atom = true
			continue
		}
		if c == '*' || c == '+' || c == '?' {
			if !atom {
				return false
			}
			atom = false
			continue
		}
		if c == '{' && i+1 < len(b) && b[i+1] >= '0' && b[i+1] <= '9' {
			if !atom {
				return false
			}
			j := i + 1
			for j < len(b) && (b[j] == ',' || (b[j] >= '0' && b[j] <= '9')) {
				j++
			}
			if j >= len(b) || b[j] != '}' {
				return false
			}
			if !boundsOrdered(string(b[i+1 : j])) {
				return false
			}
			i = j
			atom = false
			continue
		}
		if c == '^' || c == '$' || c == '|' {
			atom = false
			continue
		}
		atom = true
	}
	return true
}

func boundsOrdered(inner string) bool {
	lo, hi, bounded := strings.Cut(inner, ",")
	n, err := strconv.ParseUint(lo, 10, 64)
	if err != nil {
		return false
	}
	if !bounded || hi == "" {
		return true
	}
	if strings.ContainsRune(hi, ',') {
		return false
	}
	m, err := strconv.ParseUint(hi, 10, 64)
	if err != nil {
		return false
	}
	return n <= m
}

// CharClasses reports whether every `[...]` class is terminated, non-empty,
// and has its ranges ordered.
func CharClasses(b []byte) bool {
	i := 0
	for i < len(b) {
		if b[i] == '\\' {
			i += 2
			continue
		}
		if b[i] != '[' {
			i++
			continue
		}
		next, ok := scanClass(b, i+1)
		if !ok {
			return false
		}
		i = next
	}
	return true
}

// scanClass validates one class body starting just past the '[' and returns
// the position just past the closing ']'.
func scanClass(b []byte, i int) (int, bool) {
	if i < len(b) && b[i] == '^' {
		i++
	}
	if i >= len(b) || b[i] == ']' {
		return 0, false // empty class
	}
	for i < len(b) && b[i] != ']' {
		if b[i] == '\\' {
			i += 2
			continue
		}
		if i+2 < len(b) && b[i+1] == '-' && b[i+2] != ']' {
			if b[i] > b[i+2] {
				return 0, false
			}
			i += 3
			continue
		}
		i++
	}
	if i >= len(b) {
		return 0, false // unterminated
	}
	return i + 1, true
}
