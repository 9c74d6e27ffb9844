package json11

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func stringify(t *testing.T, v any) string {
	t.Helper()
	s, ok, err := Stringify(v, nil, "", nil)
	require.NoError(t, err)
	require.True(t, ok, "expected output for %#v", v)
	return s
}

type celsius float64

type person struct {
	Name   string `json:"name"`
	Age    int    `json11:"age,omitempty" json:"years"`
	Secret string `json:"-"`
	note   string
	Nick   *string
}

type base struct {
	ID   int
	Kind string
}

type derived struct {
	base
	Base2 base `json:"base2"`
	Kind  string
}

type Embedded struct {
	ID   int
	Kind string
}

type withEmbedded struct {
	Embedded
	Kind string
}

type withEmbeddedPtr struct {
	*Embedded
	Name string
}

type Node struct {
	*Node
	V int
}

func TestStringify(t *testing.T) {
	nick := "al"
	seven := 7
	cases := []struct {
		name     string
		input    any
		expected string
	}{
		{"object", obj("a", 1.0), "{a:1}"},
		{"string", "abc", "'abc'"},
		{"null", nil, "null"},
		{"bools", []any{true, false}, "[true,false]"},
		{"empty containers", []any{obj(), []any{}}, "[{},[]]"},
		{"key needing quotes", obj("a-b", 1.0), "{'a-b':1}"},
		{"identifier keys", obj("$_", 1.0, "\u00FCber", 2.0, "", 3.0, "1a", 4.0), "{$_:1,\u00FCber:2,'':3,'1a':4}"},
		{"insertion order", obj("b", 1.0, "a", 2.0), "{b:1,a:2}"},
		{"proto key", obj("__proto__", obj()), "{__proto__:{}}"},
		{"nested", obj("a", []any{1.0, obj("b", nil)}), "{a:[1,{b:null}]}"},

		{"integer float", 1.0, "1"},
		{"fraction", 0.1, "0.1"},
		{"negative zero", math.Copysign(0, -1), "-0"},
		{"large", 1e21, "1e+21"},
		{"just below exponent form", 1.2345678901234568e20, "123456789012345680000"},
		{"small", 1e-7, "1e-7"},
		{"just above exponent form", 0.000001, "0.000001"},
		{"small with digits", -1.5e-10, "-1.5e-10"},
		{"infinities", []any{math.Inf(1), math.Inf(-1), math.NaN()}, "[Infinity,-Infinity,NaN]"},
		{"float32", float32(0.1), "0.1"},
		{"ints", []any{int8(-5), uint8(255), int64(math.MaxInt64), uint64(math.MaxUint64)}, "[-5,255,9223372036854775807,18446744073709551615]"},
		{"json number", json.Number("1.50"), "1.50"},

		{"bigint", big.NewInt(123), "123n"},
		{"negative bigint", big.NewInt(-5), "-5n"},
		{"bigint value", *big.NewInt(9), "9n"},
		{"nil bigint", (*big.Int)(nil), "null"},

		{"prefers other quote", "it's", `"it's"`},
		{"keeps preferred quote", `a"b`, `'a"b'`},
		{"both quotes", `'"`, `'\'"'`},
		{"named escapes", "\b\f\n\r\t\v\x00", `'\b\f\n\r\t\v\0'`},
		{"null before digit", "\x001", `'\x001'`},
		{"other controls", "\x01\x1f\x7f\u0085", `'\x01\x1f\x7f\x85'`},
		{"separators", "\u2028\u2029", `'\u2028\u2029'`},
		{"backslash", `a\b`, `'a\\b'`},
		{"non-ASCII kept", "\u00E9\u200C\U0001F600", "'\u00E9\u200C\U0001F600'"},

		{"boxed int", &seven, "7"},
		{"named float", celsius(21.5), "21.5"},
		{"named string", Kind(0), "0"},
		{"nil slice", []int(nil), "null"},
		{"nil map", map[string]int(nil), "null"},
		{"nil pointer", (*person)(nil), "null"},
		{"int slice", []int{1, 2}, "[1,2]"},
		{"go array", [2]bool{true, false}, "[true,false]"},
		{"map", map[string]any{"b": 1, "a": 2}, "{a:2,b:1}"},
		{"int keyed map", map[int]string{2: "x", 10: "y"}, "{'10':'y','2':'x'}"},
		{"struct", person{Name: "Al", Secret: "s", note: "n"}, "{name:'Al',Nick:null}"},
		{"struct pointer", &person{Name: "Al", Age: 3, Nick: &nick}, "{name:'Al',age:3,Nick:'al'}"},
		{"unexported embedded struct skipped", derived{base: base{ID: 1}, Kind: "k"}, "{base2:{ID:0,Kind:''},Kind:'k'}"},
		{"embedded struct flattened", withEmbedded{Embedded: Embedded{ID: 1, Kind: "inner"}, Kind: "outer"}, "{ID:1,Kind:'outer'}"},
		{"embedded pointer flattened", withEmbeddedPtr{Embedded: &Embedded{ID: 1, Kind: "k"}, Name: "n"}, "{ID:1,Kind:'k',Name:'n'}"},
		{"nil embedded pointer", withEmbeddedPtr{Name: "n"}, "{Name:'n'}"},
		{"self embedding skipped", Node{Node: &Node{V: 2}, V: 1}, "{V:1}"},
		{"text marshaler", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "'2024-01-02T03:04:05Z'"},

		{"unsupported in array", []any{func() {}, Undefined, make(chan int), complex(1, 2)}, "[null,null,null,null]"},
		{"unsupported in object", obj("f", func() {}, "a", 1.0, "u", Undefined), "{a:1}"},
		{"unsupported in map", map[string]any{"f": func() {}}, "{}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, stringify(t, tc.input))
		})
	}
}

func TestStringifyNoOutput(t *testing.T) {
	for _, v := range []any{Undefined, func() {}, make(chan int), complex64(1)} {
		s, ok, err := Stringify(v, nil, "", nil)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, s)
	}
}

func TestStringifyOptions(t *testing.T) {
	t.Run("double quote preference", func(t *testing.T) {
		opts := DefaultStringifyOptions()
		opts.QuoteChar = '"'
		s, _, err := Stringify([]any{"abc", `a"b`, "it's"}, nil, "", opts)
		require.NoError(t, err)
		require.Equal(t, `["abc",'a"b',"it's"]`, s)
	})

	t.Run("quote argument overrides options", func(t *testing.T) {
		s, _, err := Stringify("abc", nil, `"`, nil)
		require.NoError(t, err)
		require.Equal(t, `"abc"`, s)

		opts := &StringifyOptions{QuoteChar: '"'}
		s, _, err = Stringify("abc", nil, "'", opts)
		require.NoError(t, err)
		require.Equal(t, `'abc'`, s)
	})

	t.Run("indent is ignored", func(t *testing.T) {
		s, _, err := Stringify(obj("a", []any{1.0}), nil, "  ", nil)
		require.NoError(t, err)
		require.Equal(t, "{a:[1]}", s)
	})

	t.Run("quote all names", func(t *testing.T) {
		opts := DefaultStringifyOptions()
		opts.QuoteAllNames = true
		s, _, err := Stringify(obj("a", 1.0, "it's", 2.0), nil, "", opts)
		require.NoError(t, err)
		require.Equal(t, `{'a':1,"it's":2}`, s)
	})

	t.Run("bigint suffix off", func(t *testing.T) {
		opts := DefaultStringifyOptions()
		opts.OmitBigIntSuffix = true
		s, _, err := Stringify([]any{big.NewInt(1), 2.0}, nil, "", opts)
		require.NoError(t, err)
		require.Equal(t, "[1,2]", s)
	})

	t.Run("zero value is the default", func(t *testing.T) {
		v := []any{"abc", big.NewInt(1)}
		s, _, err := Stringify(v, nil, "", &StringifyOptions{})
		require.NoError(t, err)
		require.Equal(t, "['abc',1n]", s)
		require.Equal(t, stringify(t, v), s)
	})

	t.Run("bigint suffix kept when other fields set", func(t *testing.T) {
		s, _, err := Stringify(big.NewInt(1), nil, "", &StringifyOptions{QuoteChar: '"'})
		require.NoError(t, err)
		require.Equal(t, "1n", s)

		i, ok := new(big.Int).SetString("-27021597764222973", 10)
		require.True(t, ok)
		s, _, err = Stringify(map[string]any{"a": i}, nil, "", &StringifyOptions{QuoteAllNames: true})
		require.NoError(t, err)
		require.Equal(t, "{'a':-27021597764222973n}", s)
		v, err := Parse(s, nil, nil)
		require.NoError(t, err)
		got, _ := v.(*Object).Get("a")
		require.Equal(t, 0, i.Cmp(got.(*big.Int)))
	})

	t.Run("unsupported quote char falls back", func(t *testing.T) {
		opts := &StringifyOptions{QuoteChar: '`'}
		require.Error(t, opts.Validate())
		s, ok, err := Stringify("abc", nil, "", opts)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "'abc'", s)

		require.NoError(t, (&StringifyOptions{QuoteChar: '"'}).Validate())
		require.NoError(t, (&StringifyOptions{}).Validate())
	})
}

type json11Hooked struct{}

func (json11Hooked) ToJSON11() any { return "json11" }
func (json11Hooked) ToJSON5() any  { return "json5" }
func (json11Hooked) ToJSON() any   { return "json" }

type json5Hooked struct{}

func (json5Hooked) ToJSON5(key string) any { return "json5:" + key }
func (json5Hooked) ToJSON() any            { return "json" }

type jsonHooked struct{}

func (jsonHooked) ToJSON(key string) any { return "json:" + key }

type chainedHook struct{}

func (chainedHook) ToJSON() any { return json5Hooked{} }

type selfHook struct{ N int }

func (h selfHook) ToJSON() any { return h }

type undefinedHook struct{}

func (undefinedHook) ToJSON11() any { return Undefined }

type ptrHook struct{ v int }

func (p *ptrHook) ToJSON11(key string) any { return p.v }

func TestStringifyHooks(t *testing.T) {
	cases := []struct {
		name     string
		input    any
		expected string
	}{
		{"most specific hook wins", obj("k", json11Hooked{}), "{k:'json11'}"},
		{"keyed json5 hook", obj("k", json5Hooked{}), "{k:'json5:k'}"},
		{"keyed json hook", []any{jsonHooked{}}, "['json:0']"},
		{"root key is empty", jsonHooked{}, "'json:'"},
		{"result is re-dispatched", obj("x", chainedHook{}), "{x:'json5:x'}"},
		{"self-returning hook", selfHook{N: 1}, "{N:1}"},
		{"hook returning undefined", obj("a", undefinedHook{}, "b", 1.0), "{b:1}"},
		{"pointer receiver", &ptrHook{v: 4}, "4"},
		{"nil pointer receiver", []any{(*ptrHook)(nil)}, "[null]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, stringify(t, tc.input))
		})
	}
}

func TestStringifyReplacer(t *testing.T) {
	t.Run("function", func(t *testing.T) {
		var rootHolder any
		replacer := ReplacerFunc(func(holder any, key string, value any) any {
			if key == "" {
				rootHolder = holder
			}
			if f, ok := value.(float64); ok {
				return f * 2
			}
			if key == "drop" {
				return Undefined
			}
			return value
		})
		s, ok, err := Stringify(obj("a", 1.0, "drop", "x", "b", []any{2.0, "y"}), replacer, "", nil)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "{a:2,b:[4,'y']}", s)

		root, isObject := rootHolder.(*Object)
		require.True(t, isObject)
		require.Equal(t, []string{""}, root.Keys())
	})

	t.Run("nil key list is no filter", func(t *testing.T) {
		s, ok, err := Stringify(obj("a", 1.0, "b", obj("c", 2.0)), KeyList(nil), "", nil)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "{a:1,b:{c:2}}", s)

		s, _, err = Stringify(obj("a", 1.0), KeyList{}, "", nil)
		require.NoError(t, err)
		require.Equal(t, "{}", s)
	})

	t.Run("runs after hooks", func(t *testing.T) {
		replacer := ReplacerFunc(func(holder any, key string, value any) any {
			if s, ok := value.(string); ok {
				return s + "!"
			}
			return value
		})
		s, _, err := Stringify([]any{json11Hooked{}}, replacer, "", nil)
		require.NoError(t, err)
		require.Equal(t, "['json11!']", s)
	})

	t.Run("root replaced by undefined", func(t *testing.T) {
		_, ok, err := Stringify(1.0, ReplacerFunc(func(any, string, any) any { return Undefined }), "", nil)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("key list", func(t *testing.T) {
		v := obj("a", 1.0, "b", obj("c", 2.0, "a", 3.0), "c", 4.0)
		s, _, err := Stringify(v, KeyList{"c", "a", "c"}, "", nil)
		require.NoError(t, err)
		require.Equal(t, "{c:4,a:1}", s)

		s, _, err = Stringify(map[string]any{"x": 1, "y": obj("x", 2.0)}, KeyList{"y", "x"}, "", nil)
		require.NoError(t, err)
		require.Equal(t, "{y:{x:2},x:1}", s)

		s, _, err = Stringify(person{Name: "Al", Age: 3}, KeyList{"age"}, "", nil)
		require.NoError(t, err)
		require.Equal(t, "{age:3}", s)

		s, _, err = Stringify([]any{obj("a", 1.0, "b", 2.0)}, KeyList{"b"}, "", nil)
		require.NoError(t, err)
		require.Equal(t, "[{b:2}]", s)
	})
}

type node struct {
	Name string
	Next *node
}

type inner struct{ V int }

type outer struct {
	In  inner
	Ptr *inner
}

func TestStringifyCycles(t *testing.T) {
	requireCircular := func(t *testing.T, v any, path []any) {
		t.Helper()
		_, ok, err := Stringify(v, nil, "", nil)
		require.False(t, ok)
		require.ErrorIs(t, err, ErrCircular)
		require.EqualError(t, err, "Converting circular structure to JSON11")
		var ce *CircularError
		require.True(t, errors.As(err, &ce))
		require.True(t, PathEquals(ce.Path, path), "got path %v", ce.Path)
	}

	t.Run("object", func(t *testing.T) {
		o := NewObject(0)
		o.Set("a", 1.0)
		o.Set("self", []any{o})
		requireCircular(t, o, []any{"self", 0})
	})

	t.Run("slice", func(t *testing.T) {
		a := []any{nil}
		a[0] = a
		requireCircular(t, a, []any{0})
	})

	t.Run("map", func(t *testing.T) {
		m := map[string]any{}
		m["m"] = m
		requireCircular(t, m, []any{"m"})
	})

	t.Run("pointer", func(t *testing.T) {
		n := &node{Name: "a"}
		n.Next = &node{Name: "b", Next: n}
		requireCircular(t, n, []any{"Next", "Next"})
	})

	t.Run("shared references are not cycles", func(t *testing.T) {
		shared := []any{1.0}
		sharedObj := obj("x", shared)
		require.Equal(t, "[[1],[1],{x:[1]},{x:[1]}]", stringify(t, []any{shared, shared, sharedObj, sharedObj}))
	})

	t.Run("field sharing its parent's address", func(t *testing.T) {
		o := &outer{In: inner{V: 1}}
		o.Ptr = &o.In
		require.Equal(t, "{In:{V:1},Ptr:{V:1}}", stringify(t, o))
	})

	t.Run("siblings unaffected after error", func(t *testing.T) {
		o := NewObject(0)
		o.Set("o", o)
		_, _, err := Stringify([]any{1.0, o}, nil, "", nil)
		require.ErrorIs(t, err, ErrCircular)

		_, _, err = Stringify([]any{obj("a", 1.0), obj("a", 1.0)}, nil, "", nil)
		require.NoError(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	big1, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	values := []any{
		nil,
		true,
		"it's \"quoted\"\n\u2028\x00\x01",
		1.5,
		math.Copysign(0, -1),
		math.Inf(-1),
		1e-7,
		1e300,
		big1,
		obj(),
		[]any{},
		obj("a", []any{1.0, "x", obj("__proto__", nil, "b-c", false)}, "$", big.NewInt(-1)),
	}
	for _, v := range values {
		for _, quote := range []string{"'", `"`} {
			s, ok, err := Stringify(v, nil, quote, nil)
			require.NoError(t, err)
			require.True(t, ok)

			got, err := Parse(s, nil, nil)
			require.NoError(t, err, "parsing %s", s)
			if diff := cmp.Diff(v, got, valueOpts); diff != "" {
				t.Errorf("round trip of %s mismatch (-want +got):\n%s", s, diff)
			}
		}
	}

	nz, err := Parse(stringify(t, math.Copysign(0, -1)), nil, nil)
	require.NoError(t, err)
	require.True(t, math.Signbit(nz.(float64)))
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		f        float64
		expected string
	}{
		{123, "123"},
		{-1.25, "-1.25"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e300, "1.5e+300"},
		{5e-324, "5e-324"},
		{math.MaxFloat64, "1.7976931348623157e+308"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.expected, formatNumber(tc.f, 64))
	}
}
