package tree

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind distinguishes the variants of an annotation [Value].
type Kind int

const (
	// KindString is a plain text value.
	KindString Kind = iota
	// KindNumber is a floating point value.
	KindNumber
	// KindList is an ordered list of values.
	KindList
)

// Value is a single annotation value: a string, a number or an ordered list
// of values. Parsers classify raw text when the value is read; nothing is
// coerced later.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	List []Value
}

// StringValue returns a string annotation value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue returns a numeric annotation value.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// ListValue returns a list annotation value holding vs.
func ListValue(vs ...Value) Value { return Value{Kind: KindList, List: vs} }

// Classify turns raw annotation text into a value. Quoted text is always a
// string; unquoted text becomes a number when it parses as one.
func Classify(raw string, quoted bool) Value {
	if !quoted {
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return NumberValue(f)
		}
	}
	return StringValue(raw)
}

// String renders the value the way it appears inside an annotation block,
// without quoting strings.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return v.Str
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	if v.Kind != KindList {
		return v
	}
	out := Value{Kind: KindList, List: make([]Value, len(v.List))}
	for i, e := range v.List {
		out.List[i] = e.Clone()
	}
	return out
}

// Annotation maps keys to annotation values. A nil Annotation is empty.
type Annotation map[string]Value

// Clone returns a deep copy, preserving nil.
func (a Annotation) Clone() Annotation {
	if a == nil {
		return nil
	}
	out := make(Annotation, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the annotation keys in sorted order.
func (a Annotation) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Annotate sets key on the node, allocating the annotation map if needed.
func (n *Node) Annotate(key string, v Value) {
	if n.Annotation == nil {
		n.Annotation = Annotation{}
	}
	n.Annotation[key] = v
}
