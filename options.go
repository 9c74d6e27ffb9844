package json11

import (
	"fmt"

	"github.com/go-kit/log"
)

// DefaultMaxDepth is the container nesting limit applied when
// ParseOptions.MaxDepth is not positive.
const DefaultMaxDepth = 10000

// ParseOptions controls Parse.
type ParseOptions struct {
	// PreserveLongNumerals keeps decimal integer literals that a float64
	// cannot hold exactly as *big.Int values instead of rounding them.
	PreserveLongNumerals bool
	// MaxDepth bounds the nesting of objects and arrays.
	MaxDepth int
	// Logger receives advisory diagnostics. Nil discards them.
	Logger log.Logger
}

// DefaultParseOptions returns the options used when Parse is given nil.
func DefaultParseOptions() *ParseOptions {
	return &ParseOptions{
		PreserveLongNumerals: false,
		MaxDepth:             DefaultMaxDepth,
		Logger:               log.NewNopLogger(),
	}
}

func (o *ParseOptions) maxDepth() int {
	if o != nil && o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (o *ParseOptions) logger() log.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return log.NewNopLogger()
}

// StringifyOptions controls Stringify. The zero value is the default.
type StringifyOptions struct {
	// QuoteChar is the preferred string delimiter, '\'' or '"'. Zero, or any
	// other character, means '\''.
	QuoteChar rune
	// QuoteAllNames quotes object keys even when they are valid identifiers.
	QuoteAllNames bool
	// OmitBigIntSuffix writes big integers without the trailing 'n'.
	OmitBigIntSuffix bool
}

// DefaultStringifyOptions returns the options used when Stringify is given nil.
func DefaultStringifyOptions() *StringifyOptions {
	return &StringifyOptions{
		QuoteChar:        '\'',
		QuoteAllNames:    false,
		OmitBigIntSuffix: false,
	}
}

// Validate reports whether QuoteChar is a supported delimiter. Stringify does
// not call it: an unsupported QuoteChar is treated as '\''.
func (o *StringifyOptions) Validate() error {
	switch o.QuoteChar {
	case 0, '\'', '"':
		return nil
	}
	return fmt.Errorf("json11: unsupported quote character %q", o.QuoteChar)
}

func (o *StringifyOptions) quote() rune {
	if o.QuoteChar == '"' {
		return '"'
	}
	return '\''
}
