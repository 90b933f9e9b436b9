// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package param

import (
	"errors"
	"fmt"
)

// Native is a parameter object owned by a CLI runtime.
type Native interface {
	// BindingKey is the key the resolved value is passed to the callback under.
	BindingKey() string
	SetBindingKey(key string)
}

// Common carries the construction arguments both native constructors accept.
type Common struct {
	Decls      []string
	Default    any
	Type       Type
	Required   bool
	Choices    []any
	Help       string
	EnvVar     string
	Eager      bool
	Callback   Callback
	Completion Completion

	ShowDefault bool
}

// ArgumentArgs are the construction arguments of a positional parameter.
type ArgumentArgs struct {
	Common
	Nargs       int
	Metavar     string
	ExposeValue bool
}

// OptionArgs are the construction arguments of a named parameter.
type OptionArgs struct {
	Common
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

// Runtime is the adapter to an external CLI runtime: exactly the two native
// constructors.
type Runtime interface {
	NewArgument(ArgumentArgs) (Native, error)
	NewOption(OptionArgs) (Native, error)
}

// Builder realises descriptors of one variant through a Runtime. Builders are
// stateless.
type Builder interface {
	Kind() Kind
	// New returns a fresh descriptor with the variant's pre-filled fields,
	// then fields applied.
	New(fields ...Field) *Descriptor
	Build(rt Runtime, d *Descriptor) (Native, error)
}

var (
	// ArgumentBuilder realises positional parameters.
	ArgumentBuilder Builder = argumentBuilder{}
	// OptionBuilder realises named parameters. Its descriptors start with
	// HideInput and ShowChoices set.
	OptionBuilder Builder = optionBuilder{}
)

var errNoRuntime = errors.New("no runtime")

type argumentBuilder struct{}

func (argumentBuilder) Kind() Kind { return ArgumentKind }

func (b argumentBuilder) New(fields ...Field) *Descriptor {
	d := &Descriptor{builder: b, ExposeValue: true}
	d.Update(fields...)
	return d
}

func (argumentBuilder) Build(rt Runtime, d *Descriptor) (Native, error) {
	if rt == nil {
		return nil, errNoRuntime
	}
	if d.Kind() != ArgumentKind {
		return nil, fmt.Errorf("cannot build %s descriptor as argument", d.Kind())
	}
	return rt.NewArgument(ArgumentArgs{
		Common:      d.common(),
		Nargs:       d.Nargs,
		Metavar:     d.Metavar,
		ExposeValue: d.ExposeValue,
	})
}

type optionBuilder struct{}

func (optionBuilder) Kind() Kind { return OptionKind }

func (b optionBuilder) New(fields ...Field) *Descriptor {
	d := &Descriptor{builder: b, HideInput: true, ShowChoices: true}
	d.Update(fields...)
	return d
}

func (optionBuilder) Build(rt Runtime, d *Descriptor) (Native, error) {
	if rt == nil {
		return nil, errNoRuntime
	}
	if d.Kind() != OptionKind {
		return nil, fmt.Errorf("cannot build %s descriptor as option", d.Kind())
	}
	return rt.NewOption(OptionArgs{
		Common:             d.common(),
		Multiple:           d.Multiple,
		IsFlag:             d.IsFlag,
		FlagValue:          d.FlagValue,
		Count:              d.Count,
		Prompt:             d.Prompt,
		ConfirmationPrompt: d.ConfirmationPrompt,
		HideInput:          d.HideInput,
		Hidden:             d.Hidden,
		ShowChoices:        d.ShowChoices,
		ShowEnvVar:         d.ShowEnvVar,
		AllowFromAutoEnv:   d.AllowFromAutoEnv,
	})
}

func (d *Descriptor) common() Common {
	return Common{
		Decls:       append([]string(nil), d.Decls...),
		Default:     d.Default,
		Type:        d.Type,
		Required:    d.Required,
		Choices:     append([]any(nil), d.Choices...),
		Help:        d.Help,
		EnvVar:      d.EnvVar,
		Eager:       d.Eager,
		Callback:    d.Callback,
		Completion:  d.Completion,
		ShowDefault: d.ShowDefault,
	}
}

// Build realises d with its own builder.
func Build(rt Runtime, d *Descriptor) (Native, error) {
	if d == nil || d.builder == nil {
		return nil, errors.New("descriptor has no builder")
	}
	return d.builder.Build(rt, d)
}
