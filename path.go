package json11

import (
	"fmt"
	"strings"
)

// Path represents a sequence of strings and integers >= 0 that gives the path
// to a value inside a JSON11 document. For example, the sequence {1, "foo", 0}
// is the path to document[1]["foo"][0]. The zero Path is the document root.
type Path struct {
	end *pathNode
}

const notAnIndex int = -2

type pathNode struct {
	previous *pathNode
	index    int // = notAnIndex if key
	key      string
}

// PathToSlice converts a Path to a slice of int and string values.
func PathToSlice(p Path) []any {
	var result []any
	for n := p.end; n != nil; n = n.previous {
		if n.index == notAnIndex {
			result = append(result, n.key)
		} else {
			result = append(result, n.index)
		}
	}
	var i, j int
	for j = len(result) - 1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// SliceToPath converts a slice of int and string values to a Path.
func SliceToPath(elems []any) Path {
	var end *pathNode
	for _, elem := range elems {
		switch e := elem.(type) {
		case int:
			end = &pathNode{previous: end, index: e}
		case string:
			end = &pathNode{previous: end, index: notAnIndex, key: e}
		default:
			panic("SliceToPath: invalid element type; must be int or string")
		}
	}
	return Path{end}
}

// PathEquals returns true iff the given path is equivalent to the given
// sequence of int and string values.
func PathEquals(path Path, elems []any) bool {
	p := path.end
	for i := len(elems) - 1; i >= 0; i-- {
		if p == nil {
			return false
		}
		switch e := elems[i].(type) {
		case int:
			if p.index < 0 || p.index != e {
				return false
			}
		case string:
			if p.index >= 0 || p.key != e {
				return false
			}
		default:
			panic("PathEquals: invalid element type; must be int or string")
		}
		p = p.previous
	}
	return p == nil
}

// String returns a sequence of indexation operators that can be used to
// access the value (e.g. [0]["foo"][1]). The root path is the empty string.
func (p Path) String() string {
	var sb strings.Builder
	var rec func(*pathNode)
	rec = func(p *pathNode) {
		if p == nil {
			return
		}
		rec(p.previous)
		if p.index == notAnIndex {
			sb.WriteByte('[')
			writeQuoted(&sb, p.key, '"')
			sb.WriteByte(']')
		} else {
			sb.WriteString(fmt.Sprintf("[%v]", p.index))
		}
	}
	rec(p.end)
	return sb.String()
}

// Index returns the path extended by an array index.
func (p Path) Index(i int) Path {
	return Path{&pathNode{previous: p.end, index: i}}
}

// Key returns the path extended by an object key.
func (p Path) Key(k string) Path {
	return Path{&pathNode{previous: p.end, index: notAnIndex, key: k}}
}

// IsRoot reports whether p addresses the document root.
func (p Path) IsRoot() bool {
	return p.end == nil
}
