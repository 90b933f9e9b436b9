// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cobrart realises parameter descriptors as cobra/pflag parameters
// and resolves their values when a command runs.
//
// Options become pflag flags on the command. Arguments are bound from the
// positional arguments cobra leaves behind. Each value is resolved from, in
// order, the command line, the environment, an interactive prompt and the
// default.
package cobrart

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yeetrun/sigcli/pkg/param"
	"golang.org/x/term"
	"tailscale.com/types/logger"
)

var isTerminalFn = term.IsTerminal

// Runtime implements param.Runtime for cobra commands.
type Runtime struct {
	// AutoEnvPrefix enables PREFIX_NAME environment lookup for options that
	// allow it.
	AutoEnvPrefix string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Stdin and Stderr are used for prompts.
	Stdin  io.Reader
	Stderr io.Writer
	Logf   logger.Logf
}

// New returns a runtime wired to the process environment and terminal.
func New() *Runtime {
	return &Runtime{
		LookupEnv: os.LookupEnv,
		Stdin:     os.Stdin,
		Stderr:    os.Stderr,
	}
}

func (r *Runtime) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *Runtime) lookupEnv(name string) (string, bool) {
	if r.LookupEnv == nil {
		return os.LookupEnv(name)
	}
	return r.LookupEnv(name)
}

// NewArgument implements param.Runtime.
func (r *Runtime) NewArgument(a param.ArgumentArgs) (param.Native, error) {
	if len(a.Decls) != 1 {
		return nil, fmt.Errorf("argument takes exactly one declaration, got %q", a.Decls)
	}
	name := a.Decls[0]
	if name == "" || strings.HasPrefix(name, "-") {
		return nil, fmt.Errorf("invalid argument name %q", name)
	}
	if a.Nargs == 0 {
		a.Nargs = 1
	}
	if a.Nargs < param.Unlimited {
		return nil, fmt.Errorf("argument %s: invalid nargs %d", name, a.Nargs)
	}
	return &Argument{args: a, name: name, key: name}, nil
}

// NewOption implements param.Runtime.
func (r *Runtime) NewOption(o param.OptionArgs) (param.Native, error) {
	long, short, err := parseDecls(o.Decls)
	if err != nil {
		return nil, err
	}
	if o.Count && !o.IsFlag {
		o.IsFlag = true
	}
	if o.IsFlag && o.Multiple && !o.Count {
		return nil, fmt.Errorf("option --%s: flags cannot be repeatable", long)
	}
	return &Option{args: o, long: long, short: short, key: strings.ReplaceAll(long, "-", "_")}, nil
}

// parseDecls splits option declarations into the long flag name and an
// optional one-letter shorthand. Declarations without dashes are ignored; the
// binding key is set separately.
func parseDecls(decls []string) (long, short string, err error) {
	for _, d := range decls {
		switch {
		case strings.HasPrefix(d, "--"):
			name := d[2:]
			if name == "" || strings.ContainsAny(name, " =/") {
				return "", "", fmt.Errorf("invalid option declaration %q", d)
			}
			if long == "" {
				long = name
			}
		case strings.HasPrefix(d, "-"):
			name := d[1:]
			if len(name) != 1 {
				return "", "", fmt.Errorf("invalid option declaration %q: shorthand must be one letter", d)
			}
			short = name
		}
	}
	if long == "" {
		if short == "" {
			return "", "", fmt.Errorf("option needs a --name declaration, got %q", decls)
		}
		long = short
		short = ""
	}
	return long, short, nil
}

// Argument is a positional parameter.
type Argument struct {
	args param.ArgumentArgs
	name string
	key  string
}

func (a *Argument) BindingKey() string       { return a.key }
func (a *Argument) SetBindingKey(key string) { a.key = key }

// Name is the declared argument name.
func (a *Argument) Name() string { return a.name }

// Args returns the construction arguments.
func (a *Argument) Args() param.ArgumentArgs { return a.args }

func (a *Argument) unlimited() bool { return a.args.Nargs == param.Unlimited }

// Metavar is how the argument appears in usage lines.
func (a *Argument) Metavar() string {
	m := a.args.Metavar
	if m == "" {
		m = strings.ToUpper(a.name)
	}
	if a.unlimited() {
		m += "..."
	}
	if !a.args.Required {
		m = "[" + m + "]"
	}
	return m
}

func (a *Argument) display() string {
	return strings.TrimSuffix(strings.Trim(a.Metavar(), "[]"), "...")
}

// HelpRecord returns the argument's help line as a declaration and its help.
func (a *Argument) HelpRecord() (decl, help string) {
	return a.Metavar(), withExtra(a.args.Help, extras(a.args.Common, a.args.EnvVar != "", false))
}

// Option is a named parameter.
type Option struct {
	args  param.OptionArgs
	long  string
	short string
	key   string
}

func (o *Option) BindingKey() string       { return o.key }
func (o *Option) SetBindingKey(key string) { o.key = key }

// Name is the long flag name without dashes.
func (o *Option) Name() string { return o.long }

// Shorthand is the one-letter flag, if any.
func (o *Option) Shorthand() string { return o.short }

// Args returns the construction arguments.
func (o *Option) Args() param.OptionArgs { return o.args }

// Hidden reports whether the option is left out of help.
func (o *Option) Hidden() bool { return o.args.Hidden }

func (o *Option) display() string { return "--" + o.long }

// HelpRecord returns the option's help line as a declaration and its help,
// e.g. "-l, --level [low|high]" and "Level  [default: low]".
func (o *Option) HelpRecord() (decl, help string) {
	var b strings.Builder
	if o.short != "" {
		b.WriteString("-" + o.short + ", ")
	}
	b.WriteString("--" + o.long)
	if !o.args.IsFlag {
		b.WriteString(" ")
		if o.args.ShowChoices && len(o.args.Choices) > 0 {
			b.WriteString("[" + strings.Join(choiceStrings(o.args.Choices), "|") + "]")
		} else {
			b.WriteString(typeMetavar(o.args.Type))
		}
	}
	return b.String(), withExtra(o.args.Help, extras(o.args.Common, o.args.ShowEnvVar, o.args.Multiple))
}

func typeMetavar(t param.Type) string {
	switch t {
	case param.TypeInt:
		return "INTEGER"
	case param.TypeFloat:
		return "FLOAT"
	case param.TypeBool:
		return "BOOLEAN"
	}
	return "TEXT"
}

func extras(c param.Common, showEnv, multiple bool) []string {
	var out []string
	if showEnv && c.EnvVar != "" {
		out = append(out, "env var: "+c.EnvVar)
	}
	if c.ShowDefault && c.Default != nil {
		out = append(out, "default: "+formatValue(c.Default))
	}
	if c.Required {
		out = append(out, "required")
	}
	if multiple {
		out = append(out, "repeatable")
	}
	return out
}

func withExtra(help string, extra []string) string {
	if len(extra) == 0 {
		return help
	}
	tail := "[" + strings.Join(extra, "; ") + "]"
	if help == "" {
		return tail
	}
	return help + "  " + tail
}

func formatValue(v any) string {
	switch v := v.(type) {
	case []any:
		return strings.Join(choiceStrings(v), ", ")
	case []string:
		return strings.Join(v, ", ")
	}
	return fmt.Sprint(v)
}
