// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shape

import (
	"encoding"
	"fmt"
	"reflect"
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// FromType maps a Go type to its shape:
//
//	bool, ints, uints, floats, string  -> primitives
//	[]T                                 -> list(T)
//	[N]T                                -> tuple(T)
//	map[T]struct{}, map[T]bool          -> set(T)
//	*T                                  -> optional(T)
//	types implementing TextUnmarshaler  -> named
//
// Any other type is an error.
func FromType(t reflect.Type) (Shape, error) {
	if t == nil {
		return Shape{}, fmt.Errorf("nil type")
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return NamedOf(t.String()), nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return OfBool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return OfInt(), nil
	case reflect.Float32, reflect.Float64:
		return OfFloat(), nil
	case reflect.String:
		return OfString(), nil
	case reflect.Pointer:
		inner, err := FromType(t.Elem())
		if err != nil {
			return Shape{}, err
		}
		return OptionalOf(inner), nil
	case reflect.Slice:
		elem, err := FromType(t.Elem())
		if err != nil {
			return Shape{}, err
		}
		return ListOf(elem), nil
	case reflect.Array:
		elem, err := FromType(t.Elem())
		if err != nil {
			return Shape{}, err
		}
		return TupleOf(elem), nil
	case reflect.Map:
		if v := t.Elem(); v.Kind() == reflect.Bool || (v.Kind() == reflect.Struct && v.NumField() == 0) {
			elem, err := FromType(t.Key())
			if err != nil {
				return Shape{}, err
			}
			return SetOf(elem), nil
		}
	}
	return Shape{}, fmt.Errorf("unsupported type %s", t)
}

// WithChoices replaces the innermost element of s with a literal set of
// values, keeping any sequence or optional wrapper: WithChoices(list(string),
// a, b) is list(literal(a, b)).
func WithChoices(s Shape, values ...any) Shape {
	switch s.kind {
	case Optional, List, Set, Tuple, Iterable:
		in, _ := s.Elem()
		return Shape{kind: s.kind, elem: ptrTo(WithChoices(in, values...))}
	}
	return LiteralOf(values...)
}

func ptrTo(s Shape) *Shape { return &s }
