// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shape describes the recognised shapes of a parameter's type
// annotation: primitives, sequences of an element shape, closed literal sets,
// optional wrappers and opaque named types.
//
// A Shape is a closed tagged union. Callers switch on Kind and handle every
// case instead of probing for markers.
package shape

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the tag of a Shape.
type Kind uint8

const (
	// Invalid is the kind of the zero Shape, i.e. a missing annotation.
	Invalid Kind = iota
	Bool
	Int
	Float
	String
	List
	Set
	Tuple
	Iterable
	Literal
	Optional
	Named
)

var kindNames = [...]string{
	Invalid:  "invalid",
	Bool:     "bool",
	Int:      "int",
	Float:    "float",
	String:   "string",
	List:     "list",
	Set:      "set",
	Tuple:    "tuple",
	Iterable: "iterable",
	Literal:  "literal",
	Optional: "optional",
	Named:    "named",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsPrimitive reports whether k is one of bool, int, float or string.
func (k Kind) IsPrimitive() bool {
	switch k {
	case Bool, Int, Float, String:
		return true
	}
	return false
}

// IsSequence reports whether k is a sequence-like origin.
func (k Kind) IsSequence() bool {
	switch k {
	case List, Set, Tuple, Iterable:
		return true
	}
	return false
}

// Shape is an annotation. The zero value means "no annotation".
type Shape struct {
	kind   Kind
	elem   *Shape
	values []any
	name   string
}

var (
	boolShape   = Shape{kind: Bool}
	intShape    = Shape{kind: Int}
	floatShape  = Shape{kind: Float}
	stringShape = Shape{kind: String}
)

func OfBool() Shape   { return boolShape }
func OfInt() Shape    { return intShape }
func OfFloat() Shape  { return floatShape }
func OfString() Shape { return stringShape }

// ListOf returns a list-of-elem shape.
func ListOf(elem Shape) Shape { return seq(List, elem) }

// SetOf returns a set-of-elem shape.
func SetOf(elem Shape) Shape { return seq(Set, elem) }

// TupleOf returns a homogeneous tuple-of-elem shape.
func TupleOf(elem Shape) Shape { return seq(Tuple, elem) }

// IterableOf returns a shape for anything that can be iterated for elem values.
func IterableOf(elem Shape) Shape { return seq(Iterable, elem) }

func seq(k Kind, elem Shape) Shape {
	e := elem
	return Shape{kind: k, elem: &e}
}

// LiteralOf returns a closed choice set. Values are kept in declaration order.
func LiteralOf(values ...any) Shape {
	return Shape{kind: Literal, values: append([]any(nil), values...)}
}

// OptionalOf wraps inner as "inner or nothing".
func OptionalOf(inner Shape) Shape {
	in := inner
	return Shape{kind: Optional, elem: &in}
}

// NamedOf returns an opaque shape for a user type called name.
func NamedOf(name string) Shape {
	return Shape{kind: Named, name: name}
}

// Kind returns the tag of s.
func (s Shape) Kind() Kind { return s.kind }

// IsZero reports whether s is the missing annotation.
func (s Shape) IsZero() bool { return s.kind == Invalid }

// Origin returns the un-parameterised base of s. For a non-generic shape the
// origin is the shape's own kind.
func (s Shape) Origin() Kind { return s.kind }

// Elem returns the first inner shape of a sequence or optional shape.
func (s Shape) Elem() (Shape, bool) {
	if s.elem == nil {
		return Shape{}, false
	}
	return *s.elem, true
}

// Values returns a copy of the literal values of s, or nil.
func (s Shape) Values() []any {
	if s.kind != Literal {
		return nil
	}
	return append([]any(nil), s.values...)
}

// Name returns the type name of a Named shape.
func (s Shape) Name() string { return s.name }

// Choices returns the literal value set that constrains s. It looks at s
// itself and then at its first inner shape, so optional(literal(...)) and
// list(literal(...)) are constrained too. ok is false when s carries no
// choice constraint.
func (s Shape) Choices() (values []any, ok bool) {
	switch s.kind {
	case Literal:
		return s.Values(), true
	case Optional, List, Set, Tuple, Iterable:
		if in, _ := s.Elem(); in.kind == Literal {
			return in.Values(), true
		}
	}
	return nil, false
}

// Primitive returns the primitive kind values of s coerce to: the origin when
// it is primitive, otherwise the first inner shape's kind when that is.
func (s Shape) Primitive() (Kind, bool) {
	if s.kind.IsPrimitive() {
		return s.kind, true
	}
	switch s.kind {
	case Optional, List, Set, Tuple, Iterable:
		if in, _ := s.Elem(); in.kind.IsPrimitive() {
			return in.kind, true
		}
	}
	return Invalid, false
}

// Equal reports whether s and o describe the same annotation.
func (s Shape) Equal(o Shape) bool {
	if s.kind != o.kind || s.name != o.name || len(s.values) != len(o.values) {
		return false
	}
	for i := range s.values {
		if !reflect.DeepEqual(s.values[i], o.values[i]) {
			return false
		}
	}
	if (s.elem == nil) != (o.elem == nil) {
		return false
	}
	return s.elem == nil || s.elem.Equal(*o.elem)
}

// String renders s in the same syntax Parse accepts.
func (s Shape) String() string {
	switch s.kind {
	case Invalid:
		return ""
	case Bool, Int, Float, String:
		return s.kind.String()
	case List, Set, Tuple, Iterable, Optional:
		return fmt.Sprintf("%s(%s)", s.kind, s.elem)
	case Literal:
		parts := make([]string, len(s.values))
		for i, v := range s.values {
			if str, ok := v.(string); ok {
				parts[i] = strconv.Quote(str)
			} else {
				parts[i] = fmt.Sprint(v)
			}
		}
		return "literal(" + strings.Join(parts, ", ") + ")"
	case Named:
		return s.name
	}
	return s.kind.String()
}
