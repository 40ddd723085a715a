package generator

import (
	"math"
	"strings"
)

// ParseFields splits a comma separated field list. Segments are not trimmed
// and empty segments are kept, so "firstName,,email" yields three entries.
func ParseFields(s string) []string {
	return strings.Split(s, ",")
}

// ParseCount reads the leading integer of s. Leading whitespace as defined by
// isSpace and a sign are accepted, a 0x prefix switches to base 16, and
// parsing stops at the first character that is not a digit, so "3.9" and "3abc" both give 3. ok is false
// when no digit is found. Values past the int range saturate.
func ParseCount(s string) (n int, ok bool) {
	s = strings.TrimLeftFunc(s, isSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	digits := 0
	for i := 0; i < len(s); i++ {
		d := digitValue(s[i])
		if d < 0 || d >= base {
			break
		}
		digits++
		if n > (math.MaxInt-d)/base {
			n = math.MaxInt
			continue
		}
		n = n*base + d
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// isSpace reports whether r is ECMAScript white space or a line terminator.
// U+FEFF counts, U+0085 does not.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
