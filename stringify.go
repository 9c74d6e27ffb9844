package json11

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// Replacer customizes Stringify. It is implemented by ReplacerFunc and KeyList.
type Replacer interface {
	replacer()
}

// ReplacerFunc is called for every value before it is written, after any
// serialization hook has run. holder is the container the value belongs to
// (a one-entry *Object keyed "" for the root) and key is the property name
// or the array index as a string. Returning Undefined omits the value.
type ReplacerFunc func(holder any, key string, value any) any

// KeyList restricts object output to the listed keys, in list order.
type KeyList []string

func (ReplacerFunc) replacer() {}
func (KeyList) replacer()      {}

// Serialization hooks. A value may implement at most one form of each name;
// the names are probed in the order below and the first match wins.
type (
	json11KeyHook interface{ ToJSON11(key string) any }
	json11Hook    interface{ ToJSON11() any }
	json5KeyHook  interface{ ToJSON5(key string) any }
	json5Hook     interface{ ToJSON5() any }
	jsonKeyHook   interface{ ToJSON(key string) any }
	jsonHook      interface{ ToJSON() any }
)

const maxHookHops = 64

func callHook(v any, key string) (any, bool) {
	switch h := v.(type) {
	case json11KeyHook:
		return h.ToJSON11(key), true
	case json11Hook:
		return h.ToJSON11(), true
	case json5KeyHook:
		return h.ToJSON5(key), true
	case json5Hook:
		return h.ToJSON5(), true
	case jsonKeyHook:
		return h.ToJSON(key), true
	case jsonHook:
		return h.ToJSON(), true
	}
	return nil, false
}

// Stringify renders v as JSON11 text. ok is false when v produces no output
// (Undefined, a func, a chan, or a hook or replacer returning Undefined).
// quoteOrIndent may be "'" or "\"" to override opts.QuoteChar; any other
// value is ignored since output is never indented. A nil opts means
// DefaultStringifyOptions. The only error is a *CircularError.
func Stringify(v any, replacer Replacer, quoteOrIndent string, opts *StringifyOptions) (string, bool, error) {
	if opts == nil {
		opts = DefaultStringifyOptions()
	}

	s := &stringifier{
		quote:         opts.quote(),
		quoteAllNames: opts.QuoteAllNames,
		bigIntSuffix:  !opts.OmitBigIntSuffix,
		stack:         make(map[visitKey]struct{}),
	}
	switch quoteOrIndent {
	case "'":
		s.quote = '\''
	case `"`:
		s.quote = '"'
	}
	switch r := replacer.(type) {
	case ReplacerFunc:
		s.replace = r
	case KeyList:
		if r == nil {
			break
		}
		s.keys = make([]string, 0, len(r))
		for _, k := range r {
			if !slices.Contains(s.keys, k) {
				s.keys = append(s.keys, k)
			}
		}
	}

	root := NewObject(1)
	root.Set("", v)
	ok, err := s.property(root, "", v, Path{})
	if err != nil || !ok {
		return "", false, err
	}
	return s.buf.String(), true, nil
}

// visitKey identifies a container by address. The type is part of the key
// because a struct and its first field share an address.
type visitKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type stringifier struct {
	buf           bytes.Buffer
	quote         rune
	quoteAllNames bool
	bigIntSuffix  bool
	replace       ReplacerFunc
	keys          []string
	stack         map[visitKey]struct{}
}

func (s *stringifier) enter(k visitKey, path Path) error {
	if _, ok := s.stack[k]; ok {
		return &CircularError{Path: path}
	}
	s.stack[k] = struct{}{}
	return nil
}

// property writes the value stored under key in holder, reporting whether
// anything was written.
func (s *stringifier) property(holder any, key string, v any, path Path) (bool, error) {
	for range maxHookHops {
		if isNilPointer(v) {
			break
		}
		r, ok := callHook(v, key)
		if !ok {
			break
		}
		v = r
	}
	if s.replace != nil {
		v = s.replace(holder, key, v)
	}
	return s.value(v, path)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (s *stringifier) value(v any, path Path) (bool, error) {
	switch x := v.(type) {
	case nil:
		s.buf.WriteString("null")
		return true, nil
	case undefined:
		return false, nil
	case *Object:
		if x == nil {
			s.buf.WriteString("null")
			return true, nil
		}
		k := visitKey{ptr: reflect.ValueOf(x).Pointer(), typ: reflect.TypeOf(x)}
		if err := s.enter(k, path); err != nil {
			return false, err
		}
		defer delete(s.stack, k)
		return true, s.object(x, path, x.Keys(), x.Get)
	case *big.Int:
		if x == nil {
			s.buf.WriteString("null")
			return true, nil
		}
		s.bigInt(x)
		return true, nil
	case big.Int:
		s.bigInt(&x)
		return true, nil
	case json.Number:
		if x == "" {
			x = "0"
		}
		s.buf.WriteString(string(x))
		return true, nil
	case float64:
		s.buf.WriteString(formatNumber(x, 64))
		return true, nil
	case string:
		s.writeString(x)
		return true, nil
	case bool:
		s.buf.WriteString(strconv.FormatBool(x))
		return true, nil
	case encoding.TextMarshaler:
		if isNilPointer(x) {
			s.buf.WriteString("null")
			return true, nil
		}
		text, err := x.MarshalText()
		if err != nil {
			return false, nil
		}
		s.writeString(string(text))
		return true, nil
	}
	return s.reflectValue(reflect.ValueOf(v), path)
}

func (s *stringifier) reflectValue(rv reflect.Value, path Path) (bool, error) {
	switch rv.Kind() {
	case reflect.Bool:
		s.buf.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s.buf.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s.buf.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		s.buf.WriteString(formatNumber(rv.Float(), 32))
	case reflect.Float64:
		s.buf.WriteString(formatNumber(rv.Float(), 64))
	case reflect.String:
		s.writeString(rv.String())

	case reflect.Pointer:
		if rv.IsNil() {
			s.buf.WriteString("null")
			return true, nil
		}
		k := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
		if err := s.enter(k, path); err != nil {
			return false, err
		}
		defer delete(s.stack, k)
		return s.value(rv.Elem().Interface(), path)

	case reflect.Map:
		if rv.IsNil() {
			s.buf.WriteString("null")
			return true, nil
		}
		k := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
		if err := s.enter(k, path); err != nil {
			return false, err
		}
		defer delete(s.stack, k)
		entries := make(map[string]any, rv.Len())
		keys := make([]string, 0, rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			name := mapKeyString(iter.Key())
			entries[name] = iter.Value().Interface()
			keys = append(keys, name)
		}
		slices.Sort(keys)
		return true, s.object(rv.Interface(), path, keys, func(k string) (any, bool) {
			v, ok := entries[k]
			return v, ok
		})

	case reflect.Slice:
		if rv.IsNil() {
			s.buf.WriteString("null")
			return true, nil
		}
		if rv.Len() > 0 {
			k := visitKey{ptr: rv.Pointer(), typ: rv.Type(), n: rv.Len()}
			if err := s.enter(k, path); err != nil {
				return false, err
			}
			defer delete(s.stack, k)
		}
		return true, s.array(rv, path)

	case reflect.Array:
		return true, s.array(rv, path)

	case reflect.Struct:
		fields := cachedFields(rv.Type())
		entries := make(map[string]any, len(fields))
		keys := make([]string, 0, len(fields))
		for _, f := range fields {
			fv, ok := fieldByIndex(rv, f.index)
			if !ok || f.omitEmpty && isEmptyValue(fv) {
				continue
			}
			entries[f.name] = fv.Interface()
			keys = append(keys, f.name)
		}
		return true, s.object(rv.Interface(), path, keys, func(k string) (any, bool) {
			v, ok := entries[k]
			return v, ok
		})

	default:
		// func, chan, complex, unsafe.Pointer and the invalid Value
		return false, nil
	}
	return true, nil
}

func (s *stringifier) object(holder any, path Path, keys []string, lookup func(string) (any, bool)) error {
	if s.keys != nil {
		keys = s.keys
	}
	s.buf.WriteByte('{')
	wrote := false
	for _, k := range keys {
		v, ok := lookup(k)
		if !ok {
			continue
		}
		mark := s.buf.Len()
		if wrote {
			s.buf.WriteByte(',')
		}
		s.writeKey(k)
		s.buf.WriteByte(':')
		ok, err := s.property(holder, k, v, path.Key(k))
		if err != nil {
			return err
		}
		if !ok {
			s.buf.Truncate(mark)
			continue
		}
		wrote = true
	}
	s.buf.WriteByte('}')
	return nil
}

func (s *stringifier) array(rv reflect.Value, path Path) error {
	holder := rv.Interface()
	s.buf.WriteByte('[')
	for i := range rv.Len() {
		if i > 0 {
			s.buf.WriteByte(',')
		}
		ok, err := s.property(holder, strconv.Itoa(i), rv.Index(i).Interface(), path.Index(i))
		if err != nil {
			return err
		}
		if !ok {
			s.buf.WriteString("null")
		}
	}
	s.buf.WriteByte(']')
	return nil
}

func (s *stringifier) bigInt(i *big.Int) {
	s.buf.WriteString(i.String())
	if s.bigIntSuffix {
		s.buf.WriteByte('n')
	}
}

func (s *stringifier) writeKey(k string) {
	if !s.quoteAllNames && IsIdentifier(k) {
		s.buf.WriteString(k)
		return
	}
	s.writeString(k)
}

func (s *stringifier) writeString(str string) {
	writeQuoted(&s.buf, str, chooseQuote(str, s.quote))
}

func mapKeyString(k reflect.Value) string {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok && !isNilPointer(tm) {
		if text, err := tm.MarshalText(); err == nil {
			return string(text)
		}
	}
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	}
	return fmt.Sprint(k.Interface())
}

type structField struct {
	name      string
	index     []int
	omitEmpty bool
}

var fieldCache sync.Map // map[reflect.Type][]structField

func cachedFields(t reflect.Type) []structField {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]structField)
	}
	f, _ := fieldCache.LoadOrStore(t, typeFields(t, nil, nil))
	return f.([]structField)
}

// fieldByIndex is reflect.Value.FieldByIndex, except that a nil embedded
// pointer on the way reports false instead of panicking.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// typeFields lists the serialized fields of t. Untagged embedded structs and
// struct pointers are flattened; when names collide the shallowest field
// wins. outer holds the embedding types above t.
func typeFields(t reflect.Type, index []int, outer []reflect.Type) []structField {
	var fields []structField
	byName := make(map[string]int)
	add := func(f structField) {
		if i, ok := byName[f.name]; ok {
			if len(f.index) < len(fields[i].index) {
				fields[i] = f
			}
			return
		}
		byName[f.name] = len(fields)
		fields = append(fields, f)
	}

	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get("json11")
		if tag == "" {
			tag = sf.Tag.Get("json")
		}
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		idx := append(slices.Clone(index), i)

		if ft := sf.Type; sf.Anonymous && name == "" {
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if sf.IsExported() && ft != t && !slices.Contains(outer, ft) {
					for _, f := range typeFields(ft, idx, append(slices.Clone(outer), t)) {
						add(f)
					}
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		add(structField{
			name:      name,
			index:     idx,
			omitEmpty: slices.Contains(strings.Split(opts, ","), "omitempty"),
		})
	}
	return fields
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// formatNumber renders f the way ECMAScript's Number.prototype.toString does:
// shortest round-trip digits, exponent form outside [1e-6, 1e21).
func formatNumber(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, bitSize)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// chooseQuote returns the preferred delimiter unless the string contains it
// and not the alternative.
func chooseQuote(s string, preferred rune) rune {
	other := '"'
	if preferred == '"' {
		other = '\''
	}
	if strings.ContainsRune(s, preferred) && !strings.ContainsRune(s, other) {
		return other
	}
	return preferred
}

type textWriter interface {
	io.StringWriter
	io.ByteWriter
	WriteRune(r rune) (int, error)
}

const lowerHex = "0123456789abcdef"

// writeQuoted writes s as a string literal delimited by q.
func writeQuoted(w textWriter, s string, q rune) {
	w.WriteRune(q)
	for i, r := range s {
		switch r {
		case q, '\\':
			w.WriteByte('\\')
			w.WriteRune(r)
		case '\b':
			w.WriteString(`\b`)
		case '\f':
			w.WriteString(`\f`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		case '\v':
			w.WriteString(`\v`)
		case 0:
			if next, _ := utf8.DecodeRuneInString(s[i+1:]); isDigit(next) {
				w.WriteString(`\x00`)
			} else {
				w.WriteString(`\0`)
			}
		case '\u2028':
			w.WriteString(`\u2028`)
		case '\u2029':
			w.WriteString(`\u2029`)
		default:
			if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
				w.WriteString(`\x`)
				w.WriteByte(lowerHex[r>>4])
				w.WriteByte(lowerHex[r&0xf])
			} else {
				w.WriteRune(r)
			}
		}
	}
	w.WriteRune(q)
}
