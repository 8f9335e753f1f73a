// Package value models the untyped documents exchanged with an API under test:
// request bodies parsed from inline YAML and response bodies decoded from JSON.
//
// A Value is a tagged union. The zero Value is Null.
package value

import (
	"math"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	List
	Map
)

// String returns the shape name used in failure messages.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Value is an immutable node of an untyped document. Integral numbers keep
// their exact int64 form in i; isInt tells whether i or f is authoritative.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	isInt bool
	s     string
	list  []Value
	m     map[string]Value
}

func NewNull() Value               { return Value{} }
func NewBool(b bool) Value         { return Value{kind: Bool, b: b} }
func NewInt(i int64) Value         { return Value{kind: Number, i: i, f: float64(i), isInt: true} }
func NewFloat(f float64) Value     { return Value{kind: Number, f: f} }
func NewString(s string) Value     { return Value{kind: String, s: s} }
func NewList(items ...Value) Value { return Value{kind: List, list: items} }

// NewMap returns a Map value. A nil map yields an empty Map, not Null.
func NewMap(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: Map, m: m}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) Bool() bool     { return v.b }
func (v Value) Str() string    { return v.s }
func (v Value) Items() []Value { return v.list }

// Float returns the numeric value as float64 regardless of integrality.
func (v Value) Float() float64 { return v.f }

// Int returns the integer form of a Number. ok is false for non-numbers and
// for numbers that were not integral in their source document.
func (v Value) Int() (int64, bool) {
	if v.kind != Number || !v.isInt {
		return 0, false
	}
	return v.i, true
}

// Len returns the number of elements of a List or entries of a Map, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case List:
		return len(v.list)
	case Map:
		return len(v.m)
	default:
		return 0
	}
}

// Get reads a key from a Map. ok is false when v is not a Map or lacks the key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Map {
		return Value{}, false
	}
	item, ok := v.m[key]
	return item, ok
}

// Index reads an element of a List.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != List || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// Keys returns the keys of a Map in sorted order.
func (v Value) Keys() []string {
	if v.kind != Map {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports deep, type-sensitive equality. An integral number never
// equals a string holding the same digits.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		if v.isInt && o.isInt {
			return v.i == o.i
		}
		return v.f == o.f
	case String:
		return v.s == o.s
	case List:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case Map:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, item := range v.m {
			other, ok := o.m[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Text renders v the way it is substituted into a request target.
// Scalars render bare, lists and maps render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		return formatNumber(v)
	case String:
		return v.s
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// String implements fmt.Stringer for failure messages; strings are quoted.
func (v Value) String() string {
	if v.kind == String {
		return strconv.Quote(v.s)
	}
	return v.Text()
}

func formatNumber(v Value) string {
	if v.isInt {
		return strconv.FormatInt(v.i, 10)
	}
	if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return strconv.FormatFloat(v.f, 'f', -1, 64)
}
