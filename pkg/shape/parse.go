// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shape

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Parse parses a type expression such as
//
//	string
//	list(int)
//	optional(literal("low", "high"))
//
// Type expressions use HCL expression syntax. Bare keywords other than the
// primitives become Named shapes; unknown constructors are an error.
func Parse(src string) (Shape, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return Shape{}, fmt.Errorf("empty type expression")
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "type", hcl.InitialPos)
	if diags.HasErrors() {
		return Shape{}, fmt.Errorf("invalid type expression %q: %w", src, diags)
	}
	return FromExpr(expr)
}

// MustParse is like Parse but panics on error. It is meant for package-level
// declarations and tests.
func MustParse(src string) Shape {
	s, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return s
}

// FromExpr converts an already parsed HCL expression into a Shape. It is used
// directly by HCL manifests where `type = list(string)` is decoded as an
// unevaluated expression.
func FromExpr(expr hcl.Expression) (Shape, error) {
	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		return fromKeyword(kw), nil
	}
	call, diags := hcl.ExprCall(expr)
	if diags.HasErrors() {
		return Shape{}, fmt.Errorf("invalid type expression at %s: must be a type keyword or constructor call", expr.Range())
	}
	switch call.Name {
	case "list", "set", "tuple", "iterable", "optional":
		if len(call.Arguments) != 1 {
			return Shape{}, fmt.Errorf("%s(...) takes exactly one type argument, got %d", call.Name, len(call.Arguments))
		}
		elem, err := FromExpr(call.Arguments[0])
		if err != nil {
			return Shape{}, err
		}
		switch call.Name {
		case "list":
			return ListOf(elem), nil
		case "set":
			return SetOf(elem), nil
		case "tuple":
			return TupleOf(elem), nil
		case "iterable":
			return IterableOf(elem), nil
		default:
			return OptionalOf(elem), nil
		}
	case "literal":
		if len(call.Arguments) == 0 {
			return Shape{}, fmt.Errorf("literal(...) needs at least one value")
		}
		values := make([]any, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			v, diags := arg.Value(nil)
			if diags.HasErrors() {
				return Shape{}, fmt.Errorf("literal value at %s: %w", arg.Range(), diags)
			}
			native, err := FromCty(v)
			if err != nil {
				return Shape{}, fmt.Errorf("literal value at %s: %w", arg.Range(), err)
			}
			switch native.(type) {
			case string, bool, int, float64:
			default:
				return Shape{}, fmt.Errorf("literal value at %s: must be a string, number or bool", arg.Range())
			}
			values = append(values, native)
		}
		return LiteralOf(values...), nil
	}
	return Shape{}, fmt.Errorf("unknown type constructor %q", call.Name)
}

func fromKeyword(kw string) Shape {
	switch kw {
	case "bool":
		return OfBool()
	case "int":
		return OfInt()
	case "float", "number":
		return OfFloat()
	case "string":
		return OfString()
	}
	return NamedOf(kw)
}

// FromCty converts a known primitive cty value to its Go counterpart: string,
// bool, int for whole numbers and float64 otherwise. Lists and tuples become
// []any. A null value converts to nil.
func FromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		if v.AsBigFloat().IsInt() {
			var i int
			if err := gocty.FromCtyValue(v, &i); err != nil {
				return nil, err
			}
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			native, err := FromCty(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
}
