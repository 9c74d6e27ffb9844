package json11

import (
	"errors"
	"math"
	"strconv"
)

// Reviver transforms each parsed value bottom-up. holder is the *Object or
// []any being built (already holding the previously resolved siblings), or a
// one-entry *Object keyed "" for the document root. Returning Undefined
// removes an object entry, blanks an array slot, or makes the root result
// Undefined; any other result replaces the value.
type Reviver func(holder any, key string, value any) any

var keywords = [...]string{"true", "false", "null", "Infinity", "NaN"}

type parser struct {
	lex                  *lexer
	reviver              Reviver
	preserveLongNumerals bool
	maxDepth             int
}

// Parse parses a single JSON11 document. The result is built from nil, bool,
// float64, *big.Int, string, *Object and []any. Errors are *SyntaxError
// values reporting the first malformed construct.
func Parse(text string, reviver Reviver, opts *ParseOptions) (any, error) {
	p := &parser{
		lex:      newLexer(text, opts.logger()),
		reviver:  reviver,
		maxDepth: opts.maxDepth(),
	}
	if opts != nil {
		p.preserveLongNumerals = opts.PreserveLongNumerals
	}

	tok, err := p.expect(modeValue, Path{})
	if err != nil {
		return nil, err
	}
	v, err := p.parseValue(tok, Path{}, 0)
	if err != nil {
		return nil, err
	}
	if _, err := p.lex.next(modeEnd); err != nil {
		return nil, err
	}

	if reviver != nil {
		root := NewObject(1)
		root.Set("", v)
		v = reviver(root, "", v)
	}
	return v, nil
}

// expect reads the next token in mode, treating end of input as an error.
func (p *parser) expect(mode lexMode, path Path) (Token, error) {
	tok, err := p.lex.next(mode)
	if err != nil {
		return Token{}, withPath(err, path)
	}
	if tok.Kind == EOF {
		return Token{}, withPath(p.lex.invalidEOF(), path)
	}
	return tok, nil
}

func withPath(err error, path Path) error {
	var se *SyntaxError
	if errors.As(err, &se) && se.Path.IsRoot() {
		se.Path = path
	}
	return err
}

func (p *parser) parseValue(tok Token, path Path, depth int) (any, error) {
	switch tok.Kind {
	case ObjectStart, ArrayStart:
		if depth >= p.maxDepth {
			return nil, &SyntaxError{Err: ErrMaxDepth, Pos: p.lex.c.positionOf(tok.Start), Path: path}
		}
		if tok.Kind == ObjectStart {
			return p.parseObject(path, depth+1)
		}
		return p.parseArray(path, depth+1)
	case String:
		return tok.Value, nil
	case Number:
		return p.resolveNumber(tok), nil
	case Identifier:
		v, err := p.resolveKeyword(tok)
		return v, withPath(err, path)
	}
	return nil, withPath(p.lex.invalidChar(tok.Start), path)
}

func (p *parser) resolveNumber(tok Token) any {
	switch tok.NumKind {
	case NumberBigInt:
		return tok.Int
	case NumberLong:
		if p.preserveLongNumerals {
			return tok.Int
		}
	}
	return tok.Float
}

// resolveKeyword maps a bare word in value position to its literal. Any other
// word is reported at the first character where it stops spelling a keyword.
func (p *parser) resolveKeyword(tok Token) (any, error) {
	switch tok.Value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	case "Infinity":
		return math.Inf(1), nil
	case "NaN":
		return math.NaN(), nil
	}

	n := 0
	for _, kw := range keywords {
		n = max(n, commonPrefixLen(tok.Value, kw))
	}
	if off := tok.Start + n; off < tok.End {
		return nil, p.lex.invalidChar(off)
	}
	if tok.End == len(p.lex.c.src) {
		return nil, p.lex.invalidEOF()
	}
	return nil, p.lex.invalidChar(tok.End)
}

func commonPrefixLen(a, b string) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return i
}

func (p *parser) parseObject(path Path, depth int) (any, error) {
	obj := NewObject(0)
	tok, err := p.expect(modePropertyNameOrObjectEnd, path)
	if err != nil {
		return nil, err
	}
	if tok.Kind == ObjectEnd {
		return obj, nil
	}

	for {
		key := tok.Value
		if _, err := p.expect(modeColon, path); err != nil {
			return nil, err
		}
		valuePath := path.Key(key)
		vt, err := p.expect(modeValue, valuePath)
		if err != nil {
			return nil, err
		}
		v, err := p.parseValue(vt, valuePath, depth)
		if err != nil {
			return nil, err
		}

		obj.Set(key, v)
		if p.reviver != nil {
			if r := p.reviver(obj, key, v); isUndefined(r) {
				obj.Delete(key)
			} else {
				obj.Set(key, r)
			}
		}

		sep, err := p.expect(modeObjectCommaOrEnd, path)
		if err != nil {
			return nil, err
		}
		if sep.Kind == ObjectEnd {
			return obj, nil
		}
		if tok, err = p.expect(modePropertyName, path); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseArray(path Path, depth int) (any, error) {
	arr := []any{}
	tok, err := p.expect(modeValueOrArrayEnd, path.Index(0))
	if err != nil {
		return nil, err
	}
	if tok.Kind == ArrayEnd {
		return arr, nil
	}

	for {
		i := len(arr)
		v, err := p.parseValue(tok, path.Index(i), depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		if p.reviver != nil {
			arr[i] = p.reviver(arr, strconv.Itoa(i), v)
		}

		sep, err := p.expect(modeArrayCommaOrEnd, path)
		if err != nil {
			return nil, err
		}
		if sep.Kind == ArrayEnd {
			return arr, nil
		}
		if tok, err = p.expect(modeValue, path.Index(i+1)); err != nil {
			return nil, err
		}
	}
}

func isUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}
