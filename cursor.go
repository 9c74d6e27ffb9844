package json11

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// eof is returned by cursor.peek when the input is exhausted.
const eof rune = -1

// Position describes a location in JSON11 source text.
type Position struct {
	Offset int // byte offset into the input, 0-based
	Line   int // line number, 1-based
	Column int // code point column, 1-based (0 when reporting a line terminator)
}

func (p Position) String() string {
	return fmt.Sprintf("%v:%v", p.Line, p.Column)
}

// cursor wraps the immutable input text. Line starts are computed lazily the
// first time a position is requested, so the lexer's hot path never pays for
// position tracking.
type cursor struct {
	src        string
	pos        int
	lineStarts []int
}

func newCursor(src string) *cursor {
	return &cursor{src: src}
}

func (c *cursor) peek() rune {
	if c.pos >= len(c.src) {
		return eof
	}
	if b := c.src[c.pos]; b < utf8.RuneSelf {
		return rune(b)
	}
	r, _ := utf8.DecodeRuneInString(c.src[c.pos:])
	return r
}

// peekAfter returns the code point following the current one.
func (c *cursor) peekAfter() rune {
	if c.pos >= len(c.src) {
		return eof
	}
	_, sz := utf8.DecodeRuneInString(c.src[c.pos:])
	if c.pos+sz >= len(c.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(c.src[c.pos+sz:])
	return r
}

func (c *cursor) advance() rune {
	if c.pos >= len(c.src) {
		return eof
	}
	if b := c.src[c.pos]; b < utf8.RuneSelf {
		c.pos++
		return rune(b)
	}
	r, sz := utf8.DecodeRuneInString(c.src[c.pos:])
	c.pos += sz
	return r
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func (c *cursor) buildLineIndex() {
	c.lineStarts = []int{0}
	for i := 0; i < len(c.src); {
		r, sz := utf8.DecodeRuneInString(c.src[i:])
		i += sz
		if !isLineTerminator(r) {
			continue
		}
		if r == '\r' && i < len(c.src) && c.src[i] == '\n' {
			i++
		}
		c.lineStarts = append(c.lineStarts, i)
	}
}

// positionOf converts an offset into a line and the column of the code point
// at that offset. An offset equal to the input length yields the column one
// past the last character of the final line.
func (c *cursor) positionOf(offset int) Position {
	if c.lineStarts == nil {
		c.buildLineIndex()
	}
	offset = min(max(offset, 0), len(c.src))
	line := sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > offset }) - 1
	col := utf8.RuneCountInString(c.src[c.lineStarts[line]:offset]) + 1
	return Position{Offset: offset, Line: line + 1, Column: col}
}
