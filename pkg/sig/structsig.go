// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sig

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/yeetrun/sigcli/pkg/shape"
)

// Defaulter may be implemented by a struct used with Of to supply defaults
// that cannot be written as tags, including *param.Descriptor overrides.
// Keys are parameter names.
type Defaulter interface {
	Defaults() map[string]any
}

// Of derives a signature from the exported fields of struct type T, in field
// order. Recognised tags:
//
//	sig:"name,kind"   name defaults to the snake_case field name; kind is one of
//	                  positional, keyword, variadic (default positional-or-keyword).
//	                  sig:"-" skips the field.
//	default:"3"       textual default, parsed for the field's shape
//	choices:"a,b"     closes the field's value set
//	help:"..."        help text
//	env:"NAME"        environment variable
//
// Example:
//
//	type greetArgs struct {
//	    Name    string   `sig:",positional" help:"Who to greet"`
//	    Count   int      `default:"1"`
//	    Shout   bool
//	    Level   string   `sig:",keyword" choices:"low,high"`
//	    Extra   []string `sig:",variadic"`
//	}
func Of[T any]() (*Signature, error) {
	var zero T
	return FromStruct(zero)
}

// FromStruct is Of for a value whose type is only known at run time. v may be a
// struct or a pointer to one.
func FromStruct(v any) (*Signature, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("signature source must be a struct, got %T", v)
	}

	var defaults map[string]any
	if d, ok := v.(Defaulter); ok {
		defaults = d.Defaults()
	} else if d, ok := reflect.New(t).Interface().(Defaulter); ok {
		defaults = d.Defaults()
	}

	s := New()
	for _, f := range structFields(t) {
		p, err := fieldParam(f)
		if err != nil {
			return nil, err
		}
		if d, ok := defaults[p.Name]; ok {
			p.Default = d
			p.HasDefault = true
		}
		s.Add(p)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

type field struct {
	reflect.StructField
	name string
}

func structFields(t reflect.Type) []field {
	var out []field
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("sig")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = SnakeCase(f.Name)
		}
		out = append(out, field{StructField: f, name: name})
	}
	return out
}

func fieldParam(f field) (Param, error) {
	_, kindTag, _ := strings.Cut(f.Tag.Get("sig"), ",")
	p := Param{
		Name:   f.name,
		Kind:   PositionalOrKeyword,
		Help:   f.Tag.Get("help"),
		EnvVar: f.Tag.Get("env"),
	}
	switch kindTag {
	case "":
	case "positional":
		p.Kind = PositionalOnly
	case "keyword":
		p.Kind = KeywordOnly
	case "variadic":
		p.Kind = VarPositional
	default:
		return Param{}, fmt.Errorf("field %s: unknown parameter kind %q", f.Name, kindTag)
	}

	sh, err := shape.FromType(f.Type)
	if err != nil {
		return Param{}, fmt.Errorf("field %s: %w", f.Name, err)
	}
	if p.Kind == VarPositional {
		// The field holds all values; the annotation describes one.
		if !sh.Origin().IsSequence() {
			return Param{}, fmt.Errorf("field %s: variadic parameter must be a slice, got %s", f.Name, f.Type)
		}
		sh, _ = sh.Elem()
	}
	if choices, ok := f.Tag.Lookup("choices"); ok {
		values, err := parseChoices(sh, choices)
		if err != nil {
			return Param{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		sh = shape.WithChoices(sh, values...)
	}
	p.Shape = sh

	if def, ok := f.Tag.Lookup("default"); ok {
		v, err := shape.ParseDefault(sh, def)
		if err != nil {
			return Param{}, fmt.Errorf("field %s: invalid default: %w", f.Name, err)
		}
		p.Default = v
		p.HasDefault = true
	}
	return p, nil
}

func parseChoices(sh shape.Shape, list string) ([]any, error) {
	prim, _ := sh.Primitive()
	var values []any
	for _, c := range strings.Split(list, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		v, err := shape.ParseScalar(prim, c)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty choices")
	}
	return values, nil
}

// SnakeCase converts a Go identifier to snake_case: DryRun -> dry_run,
// HTTPPort -> http_port.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Populate sets the fields of the struct pointed to by dst from values keyed
// by parameter name, as produced by a command invocation. Missing and nil
// values leave the field untouched.
func Populate(dst any, values map[string]any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("populate target must be a pointer to struct, got %T", dst)
	}
	v = v.Elem()
	for _, f := range structFields(v.Type()) {
		val, ok := values[f.name]
		if !ok || val == nil {
			continue
		}
		if err := assign(v.FieldByIndex(f.Index), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", f.Name, err)
		}
	}
	return nil
}

func assign(dst reflect.Value, val any) error {
	if val == nil {
		return nil
	}
	if dst.CanAddr() {
		if u, ok := dst.Addr().Interface().(encoding.TextUnmarshaler); ok && dst.Kind() != reflect.Pointer {
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("cannot decode %T into %s", val, dst.Type())
			}
			return u.UnmarshalText([]byte(s))
		}
	}

	switch dst.Kind() {
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), val); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case reflect.Slice:
		items, err := asSlice(val)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := assign(out.Index(i), item); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		items, err := asSlice(val)
		if err != nil {
			return err
		}
		if len(items) > dst.Len() {
			return fmt.Errorf("got %d values, %s holds %d", len(items), dst.Type(), dst.Len())
		}
		for i, item := range items {
			if err := assign(dst.Index(i), item); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		items, err := asSlice(val)
		if err != nil {
			return err
		}
		m := reflect.MakeMapWithSize(dst.Type(), len(items))
		present := reflect.New(dst.Type().Elem()).Elem()
		if present.Kind() == reflect.Bool {
			present.SetBool(true)
		}
		for _, item := range items {
			k := reflect.New(dst.Type().Key()).Elem()
			if err := assign(k, item); err != nil {
				return err
			}
			m.SetMapIndex(k, present)
		}
		dst.Set(m)
		return nil
	}

	src := reflect.ValueOf(val)
	if !sameClass(src.Kind(), dst.Kind()) || !src.Type().ConvertibleTo(dst.Type()) {
		return fmt.Errorf("cannot assign %T to %s", val, dst.Type())
	}
	if src.CanInt() {
		switch {
		case dst.CanInt() && dst.OverflowInt(src.Int()):
			return fmt.Errorf("%v overflows %s", val, dst.Type())
		case dst.CanUint() && (src.Int() < 0 || dst.OverflowUint(uint64(src.Int()))):
			return fmt.Errorf("%v overflows %s", val, dst.Type())
		}
	}
	dst.Set(src.Convert(dst.Type()))
	return nil
}

func asSlice(val any) ([]any, error) {
	switch v := val.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", val)
}

// sameClass reports whether a value of kind a may be stored in kind b. Whole
// numbers may widen to floats.
func sameClass(a, b reflect.Kind) bool {
	ca, cb := kindClass(a), kindClass(b)
	return ca != 0 && (ca == cb || (ca == 2 && cb == 3))
}

func kindClass(k reflect.Kind) int {
	switch k {
	case reflect.Bool:
		return 1
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 2
	case reflect.Float32, reflect.Float64:
		return 3
	case reflect.String:
		return 4
	}
	return 0
}
