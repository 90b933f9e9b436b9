// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sig holds explicit signature metadata: the ordered parameters of a
// command callback with their passing kind, annotation shape and default.
//
// Signatures are declared with the builder API
//
//	s := sig.New().
//		Positional("src", shape.OfString()).
//		Param("count", shape.OfInt(), sig.Default(3)).
//		Keyword("level", shape.LiteralOf("low", "high")).
//		Variadic("args", shape.OfString())
//
// or derived from a struct type with Of (see structsig.go).
package sig

import (
	"fmt"
	"strings"

	"github.com/yeetrun/sigcli/pkg/shape"
)

// Kind is how a parameter is passed.
type Kind uint8

const (
	PositionalOnly Kind = iota + 1
	PositionalOrKeyword
	KeywordOnly
	VarPositional
	// VarKeyword can be declared but is never inferable.
	VarKeyword
)

var kindNames = map[Kind]string{
	PositionalOnly:      "positional_only",
	PositionalOrKeyword: "positional_or_keyword",
	KeywordOnly:         "keyword_only",
	VarPositional:       "var_positional",
	VarKeyword:          "var_keyword",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses the snake_case name of a Kind. The empty string is
// PositionalOrKeyword.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return PositionalOrKeyword, nil
	}
	for k, name := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown parameter kind %q", s)
}

// Param is one declared parameter.
type Param struct {
	Name  string
	Kind  Kind
	Shape shape.Shape
	// Default is only meaningful when HasDefault is set; a nil Default with
	// HasDefault is an explicit null default. A *param.Descriptor default
	// overrides inference for this parameter.
	Default    any
	HasDefault bool
	Help       string
	EnvVar     string
}

// Signature is an ordered parameter list.
type Signature struct {
	Params []Param
}

// New returns an empty signature.
func New() *Signature { return &Signature{} }

// ParamOption customises a Param added through the builder methods.
type ParamOption func(*Param)

// Default sets the parameter's default value.
func Default(v any) ParamOption {
	return func(p *Param) {
		p.Default = v
		p.HasDefault = true
	}
}

// Help sets the parameter's help text.
func Help(s string) ParamOption {
	return func(p *Param) { p.Help = s }
}

// EnvVar binds the parameter to an environment variable.
func EnvVar(name string) ParamOption {
	return func(p *Param) { p.EnvVar = name }
}

// Add appends p as declared.
func (s *Signature) Add(p Param) *Signature {
	s.Params = append(s.Params, p)
	return s
}

func (s *Signature) add(name string, k Kind, sh shape.Shape, opts []ParamOption) *Signature {
	p := Param{Name: name, Kind: k, Shape: sh}
	for _, o := range opts {
		o(&p)
	}
	return s.Add(p)
}

// Positional declares a positional-only parameter.
func (s *Signature) Positional(name string, sh shape.Shape, opts ...ParamOption) *Signature {
	return s.add(name, PositionalOnly, sh, opts)
}

// Param declares a positional-or-keyword parameter.
func (s *Signature) Param(name string, sh shape.Shape, opts ...ParamOption) *Signature {
	return s.add(name, PositionalOrKeyword, sh, opts)
}

// Keyword declares a keyword-only parameter.
func (s *Signature) Keyword(name string, sh shape.Shape, opts ...ParamOption) *Signature {
	return s.add(name, KeywordOnly, sh, opts)
}

// Variadic declares a variadic positional parameter. sh is the element shape.
func (s *Signature) Variadic(name string, sh shape.Shape, opts ...ParamOption) *Signature {
	return s.add(name, VarPositional, sh, opts)
}

// Lookup returns the parameter called name.
func (s *Signature) Lookup(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Validate checks that parameter names are present and unique.
func (s *Signature) Validate() error {
	seen := make(map[string]bool, len(s.Params))
	for i, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("parameter %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Hyphenate returns the flag spelling of a parameter name.
func Hyphenate(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
