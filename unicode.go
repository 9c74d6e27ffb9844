package json11

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// UnicodeVersion is the Unicode Character Database release the identifier and
// whitespace tables are derived from.
const UnicodeVersion = unicode.Version

// The three code point sets consulted by the lexer. ASCII members are handled
// by fast paths in the predicates below and are excluded from the tables.
var (
	spaceSeparator = without(unicode.Zs, func(r rune) bool {
		return r == ' ' || r == '\u00A0'
	})

	idStart = without(
		rangetable.Merge(unicode.Lu, unicode.Ll, unicode.Lt, unicode.Lm, unicode.Lo, unicode.Nl),
		isASCII,
	)

	idContinue = without(
		rangetable.Merge(idStart, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc),
		isASCII,
	)
)

func isASCII(r rune) bool { return r < 0x80 }

// without returns a copy of t with every code point satisfying drop removed.
func without(t *unicode.RangeTable, drop func(rune) bool) *unicode.RangeTable {
	var keep []rune
	rangetable.Visit(t, func(r rune) {
		if !drop(r) {
			keep = append(keep, r)
		}
	})
	return rangetable.New(keep...)
}

func isSpaceSeparator(r rune) bool {
	return r >= 0x80 && unicode.Is(spaceSeparator, r)
}

func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', '\u00A0', '\uFEFF', '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return isSpaceSeparator(r)
}

func isIDStartChar(r rune) bool {
	if r < 0x80 {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '$' || r == '_'
	}
	return unicode.Is(idStart, r)
}

func isIDContinueChar(r rune) bool {
	if r < 0x80 {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '$' || r == '_'
	}
	return r == '\u200C' || r == '\u200D' || unicode.Is(idContinue, r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return hexVal(r) >= 0
}

func hexVal(d rune) int {
	if d >= '0' && d <= '9' {
		return int(d) - '0'
	}
	if d >= 'a' && d <= 'f' {
		return int(d) - 'a' + 10
	}
	if d >= 'A' && d <= 'F' {
		return int(d) - 'A' + 10
	}
	return -1
}

// IsIdentifier reports whether s can be written as an unquoted object key.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIDStartChar(r) {
				return false
			}
		} else if !isIDContinueChar(r) {
			return false
		}
	}
	return true
}
