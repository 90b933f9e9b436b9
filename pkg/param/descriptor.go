// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package param separates what a CLI parameter should look like (Descriptor)
// from how a particular CLI runtime realises it (Builder and Runtime).
//
// A Descriptor passed as a parameter's default overrides inference:
//
//	sig.New().Keyword("level", shape.OfString(),
//		sig.Default(param.NewOption(param.Decls("-l", "--level"), param.Default("low"))))
package param

import (
	"context"
	"fmt"
)

// Kind is the builder variant a descriptor is realised with.
type Kind uint8

const (
	ArgumentKind Kind = iota + 1
	OptionKind
)

func (k Kind) String() string {
	switch k {
	case ArgumentKind:
		return "argument"
	case OptionKind:
		return "option"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Type is the coercion applied to raw command-line text.
type Type uint8

const (
	// TypeUnset leaves values as strings unless a choice set applies.
	TypeUnset Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeUnset:
		return "unset"
	case TypeBool:
		return "boolean"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeString:
		return "text"
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Callback post-processes a resolved value. It may replace the value or
// reject it with an error. The runtime calls it opaquely.
type Callback func(ctx context.Context, key string, value any) (any, error)

// Completion returns shell completion candidates for a partially typed value.
type Completion func(ctx context.Context, args []string, toComplete string) []string

// Unlimited is the Nargs value of an argument that consumes every remaining
// positional value.
const Unlimited = -1

// Descriptor is the mutable record of a CLI parameter before it is realised.
// Inference fills it in steps; Update merges further fields.
type Descriptor struct {
	builder Builder

	Decls       []string
	Default     any
	Type        Type
	Choices     []any
	Required    bool
	Help        string
	EnvVar      string
	Eager       bool
	Callback    Callback
	Completion  Completion
	ShowDefault bool

	// Argument only.
	Nargs       int
	Metavar     string
	ExposeValue bool

	// Option only.
	Multiple           bool
	IsFlag             bool
	FlagValue          any
	Count              bool
	Prompt             string
	ConfirmationPrompt bool
	HideInput          bool
	Hidden             bool
	ShowChoices        bool
	ShowEnvVar         bool
	AllowFromAutoEnv   bool
}

// Field is one named construction argument.
type Field func(*Descriptor)

// NewArgument returns a fresh Argument-kind descriptor. Used as a parameter
// default it overrides inference.
func NewArgument(fields ...Field) *Descriptor {
	return ArgumentBuilder.New(fields...)
}

// NewOption returns a fresh Option-kind descriptor. Used as a parameter
// default it overrides inference.
func NewOption(fields ...Field) *Descriptor {
	return OptionBuilder.New(fields...)
}

// Builder returns the builder variant that realises d.
func (d *Descriptor) Builder() Builder { return d.builder }

// Kind is shorthand for d.Builder().Kind().
func (d *Descriptor) Kind() Kind {
	if d.builder == nil {
		return 0
	}
	return d.builder.Kind()
}

// Update merges fields into d.
func (d *Descriptor) Update(fields ...Field) {
	for _, f := range fields {
		f(d)
	}
}

// HasDecls reports whether a name or flag has been declared.
func (d *Descriptor) HasDecls() bool { return len(d.Decls) > 0 }

// Clone returns a copy of d that shares no slices with it.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Decls = append([]string(nil), d.Decls...)
	c.Choices = append([]any(nil), d.Choices...)
	return &c
}

func Decls(decls ...string) Field {
	return func(d *Descriptor) { d.Decls = append([]string(nil), decls...) }
}

// Default sets the value used when nothing else supplies one. nil is the
// null default.
func Default(v any) Field {
	return func(d *Descriptor) { d.Default = v }
}

func WithType(t Type) Field {
	return func(d *Descriptor) { d.Type = t }
}

// Choices closes the accepted value set.
func Choices(values ...any) Field {
	return func(d *Descriptor) { d.Choices = append([]any(nil), values...) }
}

func Required(v bool) Field {
	return func(d *Descriptor) { d.Required = v }
}

func Help(s string) Field {
	return func(d *Descriptor) { d.Help = s }
}

func EnvVar(name string) Field {
	return func(d *Descriptor) { d.EnvVar = name }
}

// Eager makes the parameter resolve before all non-eager ones.
func Eager(v bool) Field {
	return func(d *Descriptor) { d.Eager = v }
}

func WithCallback(cb Callback) Field {
	return func(d *Descriptor) { d.Callback = cb }
}

func WithCompletion(c Completion) Field {
	return func(d *Descriptor) { d.Completion = c }
}

func ShowDefault(v bool) Field {
	return func(d *Descriptor) { d.ShowDefault = v }
}

// Nargs sets how many positional values an argument consumes; Unlimited
// consumes the rest.
func Nargs(n int) Field {
	return func(d *Descriptor) { d.Nargs = n }
}

func Metavar(s string) Field {
	return func(d *Descriptor) { d.Metavar = s }
}

// ExposeValue controls whether the argument's value reaches the callback.
func ExposeValue(v bool) Field {
	return func(d *Descriptor) { d.ExposeValue = v }
}

// Multiple makes an option repeatable, collecting its values.
func Multiple(v bool) Field {
	return func(d *Descriptor) { d.Multiple = v }
}

// Flag makes an option value-less.
func Flag(v bool) Field {
	return func(d *Descriptor) { d.IsFlag = v }
}

// FlagValue is the value a flag takes when present. It defaults to true.
func FlagValue(v any) Field {
	return func(d *Descriptor) { d.FlagValue = v }
}

// Count makes a flag count its occurrences.
func Count(v bool) Field {
	return func(d *Descriptor) { d.Count = v }
}

// Prompt asks for the value interactively when it was not supplied.
func Prompt(text string) Field {
	return func(d *Descriptor) { d.Prompt = text }
}

func ConfirmationPrompt(v bool) Field {
	return func(d *Descriptor) { d.ConfirmationPrompt = v }
}

func HideInput(v bool) Field {
	return func(d *Descriptor) { d.HideInput = v }
}

func Hidden(v bool) Field {
	return func(d *Descriptor) { d.Hidden = v }
}

func ShowChoices(v bool) Field {
	return func(d *Descriptor) { d.ShowChoices = v }
}

func ShowEnvVar(v bool) Field {
	return func(d *Descriptor) { d.ShowEnvVar = v }
}

// AllowFromAutoEnv lets the option read PREFIX_NAME from the environment
// when the runtime has an auto-env prefix.
func AllowFromAutoEnv(v bool) Field {
	return func(d *Descriptor) { d.AllowFromAutoEnv = v }
}
