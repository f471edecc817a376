package expr

import "slices"

// Kind identifies the type of a [Value]. The variant is closed: expressions
// can only ever produce one of these four kinds.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindInt
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindList:
		return "list of string"
	}

	return "unknown"
}

// Value is an immutable expression result.
type Value struct {
	s    string
	list []string
	n    int
	kind Kind
	b    bool
}

// Bool creates a boolean [Value].
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// String creates a string [Value].
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Int creates an integer [Value].
func Int(n int) Value {
	return Value{kind: KindInt, n: n}
}

// List creates a string-list [Value].
func List(items ...string) Value {
	return Value{kind: KindList, list: items}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Bool returns the boolean content. Only meaningful for [KindBool].
func (v Value) Bool() bool {
	return v.b
}

// Str returns the string content. Only meaningful for [KindString].
func (v Value) Str() string {
	return v.s
}

// Int returns the integer content. Only meaningful for [KindInt].
func (v Value) Int() int {
	return v.n
}

// List returns a copy of the list content. Only meaningful for [KindList].
func (v Value) List() []string {
	out := make([]string, len(v.list))
	copy(out, v.list)

	return out
}

// Equal reports whether two values have the same kind and content.
// Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.n == o.n
	case KindList:
		return slices.Equal(v.list, o.list)
	}

	return false
}
