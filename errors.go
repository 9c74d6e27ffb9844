package json11

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCharacter is wrapped by a SyntaxError reporting a character
	// that cannot appear at its position.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrInvalidEndOfInput is wrapped by a SyntaxError reporting input that
	// ended inside a construct, or an empty document.
	ErrInvalidEndOfInput = errors.New("invalid end of input")
	// ErrInvalidIdentifierCharacter is wrapped by a SyntaxError reporting a
	// \u escape in a property name that resolves to a disallowed character.
	ErrInvalidIdentifierCharacter = errors.New("invalid identifier character")
	// ErrMaxDepth is wrapped by a SyntaxError when containers nest deeper than
	// ParseOptions.MaxDepth.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
	// ErrCircular is matched by a CircularError.
	ErrCircular = errors.New("Converting circular structure to JSON11")
)

// SyntaxError describes the first malformed construct found by Parse. Parsing
// never continues past it.
type SyntaxError struct {
	Err  error    // one of the Err* sentinels above
	Char rune     // the offending character when Err == ErrInvalidCharacter
	Pos  Position // where the problem was detected
	Path Path     // path to the value being parsed when the error occurred
}

func (e *SyntaxError) Error() string {
	if e.Err == ErrInvalidCharacter {
		return fmt.Sprintf("JSON11: invalid character '%s' at %v", formatChar(e.Char), e.Pos)
	}
	return fmt.Sprintf("JSON11: %v at %v", e.Err, e.Pos)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// CircularError is returned by Stringify when a container is reached again
// while it is still being serialized.
type CircularError struct {
	Path Path // path at which the already-open container was re-entered
}

func (e *CircularError) Error() string {
	return ErrCircular.Error()
}

func (e *CircularError) Is(target error) bool {
	return target == ErrCircular
}

var charReplacements = map[rune]string{
	'\'':     `\'`,
	'"':      `\"`,
	'\\':     `\\`,
	'\b':     `\b`,
	'\f':     `\f`,
	'\n':     `\n`,
	'\r':     `\r`,
	'\t':     `\t`,
	'\v':     `\v`,
	0:        `\0`,
	'\u2028': `\u2028`,
	'\u2029': `\u2029`,
}

// formatChar renders a character for an error message so that control
// characters and quotes stay readable.
func formatChar(r rune) string {
	if s, ok := charReplacements[r]; ok {
		return s
	}
	if r < ' ' {
		return fmt.Sprintf(`\x%02x`, r)
	}
	return string(r)
}
