// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package infer turns declared parameters into CLI parameter descriptors and
// realises them through a param.Runtime.
//
// For one parameter the decision runs in order:
//
//  1. a *param.Descriptor default is an explicit override and is used as is
//  2. a bool shape is always a --flag option
//  3. otherwise the passing kind and the presence of a default pick argument
//     or option and its required-ness
//  4. descriptors without a declaration get --hyphen-name or name
//  5. sequence shapes make options repeatable and arguments unlimited
//  6. literal shapes close the choice set
//  7. primitive shapes set the coercion type
//  8. the descriptor is built and its binding key reset to the parameter name
package infer

import (
	"fmt"

	"github.com/yeetrun/sigcli/pkg/param"
	"github.com/yeetrun/sigcli/pkg/shape"
	"github.com/yeetrun/sigcli/pkg/sig"
	"tailscale.com/types/logger"
)

// Engine infers CLI parameters. The zero value is not usable; Runtime must be
// set before Infer or Walk.
type Engine struct {
	Runtime param.Runtime
	// Logf receives one line per decision. Nil discards.
	Logf logger.Logf
}

// New returns an engine that realises parameters through rt.
func New(rt param.Runtime, logf logger.Logf) *Engine {
	return &Engine{Runtime: rt, Logf: logf}
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}

// Describe runs steps 1 to 7 for p and returns the populated descriptor. It
// never calls the runtime.
func (e *Engine) Describe(p sig.Param) (*param.Descriptor, error) {
	if p.Name == "" {
		return nil, &ConfigError{Kind: p.Kind, Err: ErrNoDeclaration}
	}
	if p.Shape.IsZero() {
		return nil, &ConfigError{Param: p.Name, Kind: p.Kind, Err: ErrMissingAnnotation}
	}

	d, _ := p.Default.(*param.Descriptor)
	override := d != nil
	if override {
		if d.Builder() == nil {
			return nil, &ConfigError{Param: p.Name, Kind: p.Kind, Err: ErrNoBuilder}
		}
		d = d.Clone()
		e.logf("infer: %s: explicit %s override", p.Name, d.Kind())
	} else {
		var err error
		if d, err = e.byShapeAndKind(p); err != nil {
			return nil, err
		}
		e.applySequence(p, d)
		e.applyChoices(p, d)
	}

	if !d.HasDecls() {
		d.Update(param.Decls(declFor(d.Kind(), p.Name)))
	}
	if t, ok := primitiveType(p.Shape); ok && (!override || d.Type == param.TypeUnset) {
		d.Update(param.WithType(t))
	}
	if d.Help == "" {
		d.Help = p.Help
	}
	if d.EnvVar == "" {
		d.EnvVar = p.EnvVar
	}
	return d, nil
}

// byShapeAndKind applies the bool flag rule and, failing that, the kind rule.
func (e *Engine) byShapeAndKind(p sig.Param) (*param.Descriptor, error) {
	flag := "--" + sig.Hyphenate(p.Name)

	if p.Shape.Kind() == shape.Bool {
		def := any(false)
		if p.HasDefault {
			def = p.Default
		}
		e.logf("infer: %s: bool flag %s", p.Name, flag)
		return param.NewOption(
			param.Decls(flag),
			param.Flag(true),
			param.Default(def),
			param.ShowDefault(true),
			param.Required(false),
		), nil
	}

	switch p.Kind {
	case sig.PositionalOnly:
		e.logf("infer: %s: required argument", p.Name)
		return param.NewArgument(param.Decls(p.Name), param.Required(true)), nil
	case sig.PositionalOrKeyword:
		if !p.HasDefault {
			e.logf("infer: %s: optional argument", p.Name)
			return param.NewArgument(param.Decls(p.Name), param.Required(false)), nil
		}
		e.logf("infer: %s: option %s default %v", p.Name, flag, p.Default)
		return param.NewOption(
			param.Decls(flag),
			param.Default(p.Default),
			param.ShowDefault(true),
			param.Required(false),
		), nil
	case sig.KeywordOnly:
		var def any
		if p.HasDefault {
			def = p.Default
		}
		e.logf("infer: %s: keyword option %s required=%v", p.Name, flag, !p.HasDefault)
		return param.NewOption(
			param.Decls(flag),
			param.Default(def),
			param.Required(!p.HasDefault),
			param.ShowDefault(def != nil),
		), nil
	case sig.VarPositional:
		e.logf("infer: %s: repeatable option %s", p.Name, flag)
		return param.NewOption(
			param.Decls(flag),
			param.Multiple(true),
			param.Required(false),
		), nil
	}
	return nil, &ConfigError{Param: p.Name, Kind: p.Kind, Err: ErrUnsupportedKind}
}

func (e *Engine) applySequence(p sig.Param, d *param.Descriptor) {
	if !p.Shape.Origin().IsSequence() || p.Shape.Kind() == shape.String {
		return
	}
	switch d.Kind() {
	case param.OptionKind:
		d.Update(param.Multiple(true))
	case param.ArgumentKind:
		d.Update(param.Nargs(param.Unlimited))
	}
	e.logf("infer: %s: %s origin, variadic %s", p.Name, p.Shape.Origin(), d.Kind())
}

func (e *Engine) applyChoices(p sig.Param, d *param.Descriptor) {
	values, ok := p.Shape.Choices()
	if !ok {
		e.logf("infer: %s: no choice constraint for %s", p.Name, p.Shape)
		return
	}
	d.Update(param.Choices(values...))
}

// Infer describes p and realises it. The native's binding key is the
// parameter name, whatever its flag spelling.
func (e *Engine) Infer(p sig.Param) (param.Native, error) {
	d, err := e.Describe(p)
	if err != nil {
		return nil, err
	}
	n, err := d.Builder().Build(e.Runtime, d)
	if err != nil {
		return nil, &ConfigError{Param: p.Name, Kind: p.Kind, Err: fmt.Errorf("failed to build %s: %w", d.Kind(), err)}
	}
	n.SetBindingKey(p.Name)
	return n, nil
}

func declFor(k param.Kind, name string) string {
	if k == param.OptionKind {
		return "--" + sig.Hyphenate(name)
	}
	return name
}

func primitiveType(s shape.Shape) (param.Type, bool) {
	k, ok := s.Primitive()
	if !ok {
		return param.TypeUnset, false
	}
	switch k {
	case shape.Bool:
		return param.TypeBool, true
	case shape.Int:
		return param.TypeInt, true
	case shape.Float:
		return param.TypeFloat, true
	case shape.String:
		return param.TypeString, true
	}
	return param.TypeUnset, false
}
