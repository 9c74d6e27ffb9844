// Package json11 parses and generates JSON11, a superset of JSON5 with BigInt
// literals ("123n") and optional exact parsing of long integer numerals.
// Errors report line and column information for the first offending
// character.
package json11

import (
	"fmt"
	"iter"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Kind represents the kind of a JSON11 token.
type Kind int

const (
	// A '{' token
	ObjectStart Kind = iota
	// A '}' token
	ObjectEnd
	// A '[' token
	ArrayStart
	// A ']' token
	ArrayEnd
	// A ':' token
	Colon
	// A ',' token
	Comma
	// A single or double quoted string
	String
	// A numeric literal, including signed Infinity and NaN
	Number
	// An identifier. The keywords true, false, null, Infinity and NaN are
	// lexed as identifiers and recognized by the parser.
	Identifier
	// End of input
	EOF
)

func (k Kind) String() string {
	switch k {
	case ObjectStart:
		return "ObjectStart"
	case ObjectEnd:
		return "ObjectEnd"
	case ArrayStart:
		return "ArrayStart"
	case ArrayEnd:
		return "ArrayEnd"
	case Colon:
		return "Colon"
	case Comma:
		return "Comma"
	case String:
		return "String"
	case Number:
		return "Number"
	case Identifier:
		return "Identifier"
	case EOF:
		return "EOF"
	}
	return "<unknown Kind>"
}

// NumberKind distinguishes how a Number token must be resolved.
type NumberKind int

const (
	// NumberFloat is a literal resolved to a float64.
	NumberFloat NumberKind = iota
	// NumberBigInt is an 'n'-suffixed integer literal.
	NumberBigInt
	// NumberLong is a decimal integer literal beyond float64's exact integer
	// range. Both Float and Int are set; the parser picks one.
	NumberLong
)

// Token represents a JSON11 token.
type Token struct {
	Line    int        // the line number of the first character of the token (set by Tokenize)
	Col     int        // the column of the first character of the token (set by Tokenize)
	Start   int        // the start position of the token in the input (byte index)
	End     int        // the end position of the token in the input (byte index, exclusive)
	Kind    Kind       // the kind of token
	Value   string     // decoded string contents or identifier name; raw text otherwise
	Quote   rune       // the delimiter of a String token
	NumKind NumberKind // set for Number tokens
	Float   float64    // value of a NumberFloat or NumberLong token
	Int     *big.Int   // value of a NumberBigInt or NumberLong token
}

func (t Token) String() string {
	if t.Kind == String {
		var sb strings.Builder
		writeQuoted(&sb, t.Value, t.Quote)
		return fmt.Sprintf("%v:%v %v %s", t.Line, t.Col, t.Kind, sb.String())
	}
	return fmt.Sprintf("%v:%v %v %s", t.Line, t.Col, t.Kind, t.Value)
}

// maxSafeInteger is the largest integer n such that n and n+1 are both
// exactly representable as a float64.
const maxSafeInteger = "9007199254740991"

// lexMode tells the lexer which constructs may begin at the current point.
// Anything else is reported as an invalid character before any further
// input is consumed.
type lexMode int

const (
	modeAny lexMode = iota
	modeValue
	modeValueOrArrayEnd
	modePropertyName
	modePropertyNameOrObjectEnd
	modeColon
	modeObjectCommaOrEnd
	modeArrayCommaOrEnd
	modeEnd
)

type lexer struct {
	c      *cursor
	logger log.Logger
}

func newLexer(src string, logger log.Logger) *lexer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &lexer{c: newCursor(src), logger: logger}
}

func (l *lexer) invalidChar(offset int) error {
	r, _ := utf8.DecodeRuneInString(l.c.src[offset:])
	pos := l.c.positionOf(offset)
	if isLineTerminator(r) {
		pos.Line++
		pos.Column = 0
	}
	return &SyntaxError{Err: ErrInvalidCharacter, Char: r, Pos: pos}
}

func (l *lexer) invalidEOF() error {
	return &SyntaxError{Err: ErrInvalidEndOfInput, Pos: l.c.positionOf(len(l.c.src))}
}

func (l *lexer) invalidIdentifier(offset int) error {
	return &SyntaxError{Err: ErrInvalidIdentifierCharacter, Pos: l.c.positionOf(offset)}
}

// unexpected reports the current code point, or the end of input.
func (l *lexer) unexpected() error {
	if l.c.peek() == eof {
		return l.invalidEOF()
	}
	return l.invalidChar(l.c.pos)
}

func isNumberStart(r rune) bool {
	return r == '-' || r == '+' || r == '.' || isDigit(r)
}

func (l *lexer) allowed(mode lexMode, r rune) bool {
	switch mode {
	case modeAny:
		return strings.ContainsRune("{}[]:,\"'\\", r) || isNumberStart(r) || isIDStartChar(r)
	case modeValue, modeValueOrArrayEnd:
		if r == ']' {
			return mode == modeValueOrArrayEnd
		}
		return r == '{' || r == '[' || r == '"' || r == '\'' || isNumberStart(r) || isIDStartChar(r)
	case modePropertyName, modePropertyNameOrObjectEnd:
		if r == '}' {
			return mode == modePropertyNameOrObjectEnd
		}
		return r == '"' || r == '\'' || r == '\\' || isIDStartChar(r)
	case modeColon:
		return r == ':'
	case modeObjectCommaOrEnd:
		return r == ',' || r == '}'
	case modeArrayCommaOrEnd:
		return r == ',' || r == ']'
	}
	return false
}

// next skips whitespace and comments and returns the next token permitted by
// mode. The EOF token is returned at end of input regardless of mode.
func (l *lexer) next(mode lexMode) (Token, error) {
	if err := l.skipSpace(); err != nil {
		return Token{}, err
	}

	start := l.c.pos
	r := l.c.peek()
	if r == eof {
		return Token{Kind: EOF, Start: start, End: start}, nil
	}
	if !l.allowed(mode, r) {
		return Token{}, l.invalidChar(start)
	}

	switch r {
	case '{':
		return l.punctuator(ObjectStart), nil
	case '}':
		return l.punctuator(ObjectEnd), nil
	case '[':
		return l.punctuator(ArrayStart), nil
	case ']':
		return l.punctuator(ArrayEnd), nil
	case ':':
		return l.punctuator(Colon), nil
	case ',':
		return l.punctuator(Comma), nil
	case '"', '\'':
		return l.lexString()
	}
	if isNumberStart(r) {
		return l.lexNumber()
	}
	if mode == modeValue || mode == modeValueOrArrayEnd {
		return l.lexWord(), nil
	}
	return l.lexIdentifier()
}

func (l *lexer) punctuator(k Kind) Token {
	start := l.c.pos
	l.c.advance()
	return Token{Kind: k, Start: start, End: l.c.pos, Value: l.c.src[start:l.c.pos]}
}

func (l *lexer) skipSpace() error {
	for {
		r := l.c.peek()
		switch {
		case r == '/':
			l.c.advance()
			switch l.c.peek() {
			case '*':
				l.c.advance()
				if err := l.skipBlockComment(); err != nil {
					return err
				}
			case '/':
				l.c.advance()
				for r := l.c.peek(); r != eof && !isLineTerminator(r); r = l.c.peek() {
					l.c.advance()
				}
			default:
				return l.unexpected()
			}
		case r != eof && isWhitespace(r):
			l.c.advance()
		default:
			return nil
		}
	}
}

func (l *lexer) skipBlockComment() error {
	for {
		switch l.c.advance() {
		case eof:
			return l.invalidEOF()
		case '*':
			for l.c.peek() == '*' {
				l.c.advance()
			}
			if l.c.peek() == '/' {
				l.c.advance()
				return nil
			}
		}
	}
}

func (l *lexer) lexString() (Token, error) {
	start := l.c.pos
	quote := l.c.advance()

	var sb strings.Builder
	canUseInpSlice := true
	for {
		offset := l.c.pos
		r := l.c.peek()
		switch {
		case r == eof:
			return Token{}, l.invalidEOF()
		case r == quote:
			val := sb.String()
			if canUseInpSlice {
				val = l.c.src[start+1 : offset]
			}
			l.c.advance()
			return Token{Kind: String, Start: start, End: l.c.pos, Value: val, Quote: quote}, nil
		case r == '\\':
			if canUseInpSlice {
				canUseInpSlice = false
				sb.WriteString(l.c.src[start+1 : offset])
			}
			l.c.advance()
			if err := l.lexEscape(&sb); err != nil {
				return Token{}, err
			}
		case r == '\n' || r == '\r':
			return Token{}, l.invalidChar(offset)
		default:
			if r == '\u2028' || r == '\u2029' {
				level.Warn(l.logger).Log(
					"msg", fmt.Sprintf("'%s' in strings is not valid ECMAScript; consider escaping", formatChar(r)),
					"pos", l.c.positionOf(offset),
				)
			}
			l.c.advance()
			if !canUseInpSlice {
				sb.WriteRune(r)
			}
		}
	}
}

// lexEscape decodes the escape sequence following a backslash.
func (l *lexer) lexEscape(sb *strings.Builder) error {
	r := l.c.peek()
	switch r {
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		l.c.advance()
		if isDigit(l.c.peek()) {
			return l.invalidChar(l.c.pos)
		}
		sb.WriteByte(0)
		return nil
	case 'x':
		l.c.advance()
		v, err := l.readHex(2)
		if err != nil {
			return err
		}
		sb.WriteRune(rune(v))
		return nil
	case 'u':
		l.c.advance()
		v, err := l.readHex(4)
		if err != nil {
			return err
		}
		sb.WriteRune(l.combineSurrogate(rune(v)))
		return nil
	case '\n', '\u2028', '\u2029':
		// line continuation
	case '\r':
		l.c.advance()
		if l.c.peek() == '\n' {
			l.c.advance()
		}
		return nil
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return l.invalidChar(l.c.pos)
	case eof:
		return l.invalidEOF()
	default:
		sb.WriteRune(r)
	}
	l.c.advance()
	return nil
}

// combineSurrogate joins a high surrogate with an immediately following
// "\uXXXX" low surrogate. Unpaired surrogates cannot be held in a Go string
// and decode to U+FFFD.
func (l *lexer) combineSurrogate(r rune) rune {
	if !utf16.IsSurrogate(r) {
		return r
	}
	rest := l.c.src[l.c.pos:]
	if r < 0xDC00 && len(rest) >= 6 && rest[0] == '\\' && rest[1] == 'u' {
		lo := 0
		for i := 2; i < 6; i++ {
			d := hexVal(rune(rest[i]))
			if d < 0 {
				return utf8.RuneError
			}
			lo = lo*16 + d
		}
		if combined := utf16.DecodeRune(r, rune(lo)); combined != utf8.RuneError {
			l.c.pos += 6
			return combined
		}
	}
	return utf8.RuneError
}

func (l *lexer) readHex(n int) (int, error) {
	v := 0
	for range n {
		d := hexVal(l.c.peek())
		if d < 0 {
			return 0, l.unexpected()
		}
		v = v*16 + d
		l.c.advance()
	}
	return v, nil
}

// lexWord scans a bare word in value position. Escapes are not permitted
// there, so the word ends at the first non-identifier character.
func (l *lexer) lexWord() Token {
	start := l.c.pos
	l.c.advance()
	for isIDContinueChar(l.c.peek()) {
		l.c.advance()
	}
	return Token{Kind: Identifier, Start: start, End: l.c.pos, Value: l.c.src[start:l.c.pos]}
}

func (l *lexer) lexIdentifier() (Token, error) {
	start := l.c.pos
	var sb strings.Builder
	for first := true; ; first = false {
		r := l.c.peek()
		if r == '\\' {
			escStart := l.c.pos
			l.c.advance()
			if l.c.peek() != 'u' {
				return Token{}, l.unexpected()
			}
			l.c.advance()
			v, err := l.readHex(4)
			if err != nil {
				return Token{}, err
			}
			u := rune(v)
			if (first && !isIDStartChar(u)) || (!first && !isIDContinueChar(u)) {
				return Token{}, l.invalidIdentifier(escStart)
			}
			sb.WriteRune(u)
			continue
		}
		if (first && !isIDStartChar(r)) || (!first && !isIDContinueChar(r)) {
			break
		}
		sb.WriteRune(r)
		l.c.advance()
	}
	return Token{Kind: Identifier, Start: start, End: l.c.pos, Value: sb.String()}, nil
}

func (l *lexer) lexNumber() (Token, error) {
	start := l.c.pos
	negative := false
	if r := l.c.peek(); r == '+' || r == '-' {
		negative = r == '-'
		l.c.advance()
		switch r := l.c.peek(); {
		case r == 'I':
			return l.lexNumericKeyword(start, "Infinity", negative)
		case r == 'N':
			return l.lexNumericKeyword(start, "NaN", negative)
		case r != '.' && !isDigit(r):
			return Token{}, l.unexpected()
		}
	}

	tok := Token{Kind: Number, Start: start}
	digitsStart := l.c.pos

	if l.c.peek() == '0' && (l.c.peekAfter() == 'x' || l.c.peekAfter() == 'X') {
		l.c.advance()
		l.c.advance()
		if !isHexDigit(l.c.peek()) {
			return Token{}, l.unexpected()
		}
		for isHexDigit(l.c.peek()) {
			l.c.advance()
		}
		i, _ := new(big.Int).SetString(l.c.src[digitsStart+2:l.c.pos], 16)
		if negative {
			i.Neg(i)
		}
		if l.c.peek() == 'n' {
			l.c.advance()
			tok.NumKind, tok.Int = NumberBigInt, i
		} else {
			tok.Float, _ = new(big.Float).SetInt(i).Float64()
			if negative && i.Sign() == 0 {
				tok.Float = negZero()
			}
		}
		return l.finishNumber(tok), nil
	}

	if l.c.peek() == '0' {
		l.c.advance()
	} else {
		for isDigit(l.c.peek()) {
			l.c.advance()
		}
	}
	intDigits := l.c.src[digitsStart:l.c.pos]

	hasFraction := false
	if l.c.peek() == '.' {
		hasFraction = true
		l.c.advance()
		if intDigits == "" && !isDigit(l.c.peek()) {
			return Token{}, l.unexpected()
		}
		for isDigit(l.c.peek()) {
			l.c.advance()
		}
	}

	hasExponent := false
	if r := l.c.peek(); r == 'e' || r == 'E' {
		hasExponent = true
		l.c.advance()
		if r := l.c.peek(); r == '+' || r == '-' {
			l.c.advance()
		}
		if !isDigit(l.c.peek()) {
			return Token{}, l.unexpected()
		}
		for isDigit(l.c.peek()) {
			l.c.advance()
		}
	}

	if !hasFraction && !hasExponent {
		if l.c.peek() == 'n' {
			i, _ := new(big.Int).SetString(intDigits, 10)
			if negative {
				i.Neg(i)
			}
			l.c.advance()
			tok.NumKind, tok.Int = NumberBigInt, i
			return l.finishNumber(tok), nil
		}
		if len(intDigits) > len(maxSafeInteger) || (len(intDigits) == len(maxSafeInteger) && intDigits > maxSafeInteger) {
			i, _ := new(big.Int).SetString(intDigits, 10)
			if negative {
				i.Neg(i)
			}
			tok.NumKind, tok.Int = NumberLong, i
		}
	}

	// ParseFloat reports ErrRange alongside the correctly rounded result
	// (\u00B1Inf or \u00B10), which is what we want.
	f, _ := strconv.ParseFloat(l.c.src[digitsStart:l.c.pos], 64)
	if negative {
		f = -f
	}
	tok.Float = f
	return l.finishNumber(tok), nil
}

func (l *lexer) lexNumericKeyword(start int, word string, negative bool) (Token, error) {
	for _, want := range word {
		if l.c.peek() != want {
			return Token{}, l.unexpected()
		}
		l.c.advance()
	}
	tok := Token{Kind: Number, Start: start, Float: keywordValue(word)}
	if negative {
		tok.Float = -tok.Float
	}
	return l.finishNumber(tok), nil
}

func (l *lexer) finishNumber(tok Token) Token {
	tok.End = l.c.pos
	tok.Value = l.c.src[tok.Start:tok.End]
	return tok
}

// Tokenize returns the token stream of text. Every token kind is accepted at
// every point, so the stream describes lexical structure only; use Parse to
// check the grammar. The sequence ends at end of input or after yielding the
// first error.
func Tokenize(text string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := newLexer(text, nil)
		for {
			t, err := l.next(modeAny)
			if err != nil {
				yield(Token{}, err)
				return
			}
			if t.Kind == EOF {
				return
			}
			pos := l.c.positionOf(t.Start)
			t.Line, t.Col = pos.Line, pos.Column
			if !yield(t, nil) {
				return
			}
		}
	}
}
