// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrart

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yeetrun/sigcli/pkg/param"
	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// Binding ties realised parameters to one cobra command.
type Binding struct {
	rt     *Runtime
	cmd    *cobra.Command
	params []param.Native
	args   []*Argument
	flags  map[*Option]*flagValue
	in     *bufio.Reader
}

// Bind registers params on cmd: options as flags, arguments for positional
// binding, and any completion callbacks. params must have been made by r.
// reserved lists option spellings ("--help", "-h") the command keeps for
// itself; an option using one fails with a *ReservedError.
func (r *Runtime) Bind(cmd *cobra.Command, params []param.Native, reserved ...string) (*Binding, error) {
	b := &Binding{rt: r, cmd: cmd, params: params}
	keys := make(set.Set[string])
	names := make(set.Set[string])
	taken := set.SetOf(reserved)
	unlimited := ""
	for _, p := range params {
		if keys.Contains(p.BindingKey()) {
			return nil, fmt.Errorf("duplicate parameter %q", p.BindingKey())
		}
		keys.Add(p.BindingKey())

		switch p := p.(type) {
		case *Argument:
			if p.unlimited() {
				if unlimited != "" {
					return nil, fmt.Errorf("arguments %s and %s both take unlimited values", unlimited, p.name)
				}
				unlimited = p.name
			}
			b.args = append(b.args, p)
		case *Option:
			for _, n := range []string{"--" + p.long, "-" + p.short} {
				if n == "-" {
					continue
				}
				if taken.Contains(n) {
					return nil, &ReservedError{Param: p.BindingKey(), Name: n}
				}
				if names.Contains(n) {
					return nil, fmt.Errorf("option %s declared twice", n)
				}
				names.Add(n)
			}
			fv := &flagValue{opt: p, ownsHelp: p.long == helpFlag}
			fv.addTo(cmd.Flags())
			mak.Set(&b.flags, p, fv)
			if err := b.registerFlagCompletion(p); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("parameter %q was not made by this runtime (%T)", p.BindingKey(), p)
		}
	}
	cmd.Args = cobra.ArbitraryArgs
	if len(b.args) > 0 {
		cmd.ValidArgsFunction = b.completeArgs
	}
	return b, nil
}

// Reset forgets what the last parse recorded so the command can run again.
// cobra keeps flag state between executions.
func (b *Binding) Reset() {
	for _, fv := range b.flags {
		fv.raw, fv.count = nil, 0
	}
	ResetFlags(b.cmd.Flags())
}

// ResetFlags marks every flag in fs unchanged and restores the defaults of
// flags this package does not own.
func ResetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if _, ours := f.Value.(*flagValue); !ours && f.Changed {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// Params returns every bound parameter in declaration order.
func (b *Binding) Params() []param.Native {
	return append([]param.Native(nil), b.params...)
}

// Arguments returns the bound positional parameters in order.
func (b *Binding) Arguments() []*Argument { return b.args }

// Options returns the bound named parameters in order.
func (b *Binding) Options() []*Option {
	var out []*Option
	for _, p := range b.params {
		if o, ok := p.(*Option); ok {
			out = append(out, o)
		}
	}
	return out
}

// Resolve computes every parameter's value after cobra has parsed flags.
// args are the positional arguments cobra left. The result is keyed by
// binding key. A callback returning ErrStop ends resolution with ErrStop.
func (b *Binding) Resolve(ctx context.Context, args []string) (Values, error) {
	nargs := make([]int, len(b.args))
	for i, a := range b.args {
		nargs[i] = a.args.Nargs
	}
	groups, extra := unpackArgs(args, nargs)
	if len(extra) > 0 {
		return nil, &UsageError{Msg: fmt.Sprintf("got unexpected extra argument(s) (%s)", strings.Join(extra, " "))}
	}
	positional := make(map[*Argument][]string, len(b.args))
	for i, a := range b.args {
		positional[a] = groups[i]
	}

	order := append([]param.Native(nil), b.params...)
	sort.SliceStable(order, func(i, j int) bool { return eager(order[i]) && !eager(order[j]) })

	var vals Values
	for _, p := range order {
		var (
			v      any
			expose = true
			err    error
		)
		switch p := p.(type) {
		case *Argument:
			v, err = b.resolveArgument(p, positional[p])
			if err == nil {
				v, err = runCallback(ctx, p.args.Callback, p.key, v, p.display())
			}
			expose = p.args.ExposeValue
		case *Option:
			v, err = b.resolveOption(p)
			if err == nil {
				v, err = runCallback(ctx, p.args.Callback, p.key, v, p.display())
			}
		}
		if err != nil {
			return nil, err
		}
		if expose {
			mak.Set(&vals, p.BindingKey(), v)
		}
	}
	return vals, nil
}

func eager(p param.Native) bool {
	switch p := p.(type) {
	case *Argument:
		return p.args.Eager
	case *Option:
		return p.args.Eager
	}
	return false
}

func runCallback(ctx context.Context, cb param.Callback, key string, v any, display string) (any, error) {
	if cb == nil {
		return v, nil
	}
	out, err := cb(ctx, key, v)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, ErrStop):
		return nil, err
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return nil, withParam(err, display)
	}
	return nil, &UsageError{Param: display, Msg: fmt.Sprintf("%s: %v", display, err), Err: err}
}

func (b *Binding) resolveArgument(a *Argument, raw []string) (any, error) {
	display := a.display()
	if len(raw) == 0 && a.args.EnvVar != "" {
		if s, ok := b.rt.lookupEnv(a.args.EnvVar); ok && s != "" {
			if a.unlimited() || a.args.Nargs > 1 {
				raw = strings.Fields(s)
			} else {
				raw = []string{s}
			}
		}
	}
	if len(raw) == 0 {
		switch {
		case a.args.Default != nil:
			return a.args.Default, nil
		case a.args.Required:
			return nil, missing("argument", display)
		case a.unlimited():
			return []any{}, nil
		}
		return nil, nil
	}
	if a.args.Nargs > 1 && len(raw) != a.args.Nargs {
		return nil, &UsageError{Param: display, Msg: fmt.Sprintf("argument %s takes %d values, got %d", display, a.args.Nargs, len(raw))}
	}
	if a.args.Nargs == 1 {
		v, err := coerce(a.args.Type, a.args.Choices, raw[0])
		return v, withParam(err, display)
	}
	return coerceAll(a.args.Type, a.args.Choices, raw, display)
}

func (b *Binding) resolveOption(o *Option) (any, error) {
	fv := b.flags[o]
	display := o.display()

	var raw []string
	have := false
	if b.cmd.Flags().Changed(o.long) {
		if o.args.Count {
			return fv.count, nil
		}
		raw, have = fv.raw, true
	}
	if !have {
		raw, have = b.fromEnv(o)
	}
	if !have && o.args.Prompt != "" {
		s, ok, err := b.prompt(o)
		if err != nil {
			return nil, err
		}
		if ok {
			raw, have = []string{s}, true
		}
	}

	if !have {
		switch {
		case o.args.Default != nil:
			return o.args.Default, nil
		case o.args.Required:
			return nil, missing("option", display)
		case o.args.Count:
			return 0, nil
		case o.args.Multiple:
			return []any{}, nil
		case o.args.IsFlag:
			return false, nil
		}
		return nil, nil
	}

	switch {
	case o.args.Count:
		n, err := strconv.Atoi(strings.TrimSpace(raw[len(raw)-1]))
		if err != nil {
			return nil, &UsageError{Param: display, Value: raw[len(raw)-1], Msg: fmt.Sprintf("%q is not a valid count", raw[len(raw)-1]), Err: err}
		}
		return n, nil
	case o.args.IsFlag:
		on, err := parseBool(raw[len(raw)-1])
		if err != nil {
			return nil, &UsageError{Param: display, Value: raw[len(raw)-1], Msg: fmt.Sprintf("%q is not a valid boolean", raw[len(raw)-1]), Err: err}
		}
		if o.args.FlagValue == nil {
			return on, nil
		}
		if on {
			return o.args.FlagValue, nil
		}
		return o.args.Default, nil
	case o.args.Multiple:
		return coerceAll(o.args.Type, o.args.Choices, raw, display)
	}
	v, err := coerce(o.args.Type, o.args.Choices, raw[len(raw)-1])
	return v, withParam(err, display)
}

// fromEnv reads the option's explicit variable, then PREFIX_NAME when the
// option allows it. NAME is the upper-cased binding key, which is the
// parameter name and not the flag spelling: an option --level bound to
// parameter lvl reads PREFIX_LVL.
func (b *Binding) fromEnv(o *Option) ([]string, bool) {
	name := o.args.EnvVar
	if name == "" && o.args.AllowFromAutoEnv && b.rt.AutoEnvPrefix != "" {
		name = b.rt.AutoEnvPrefix + "_" + strings.ToUpper(o.key)
	}
	if name == "" {
		return nil, false
	}
	s, ok := b.rt.lookupEnv(name)
	if !ok || s == "" {
		return nil, false
	}
	b.rt.logf("cobrart: %s from $%s", o.display(), name)
	if o.args.Multiple {
		return strings.Fields(s), true
	}
	return []string{s}, true
}

func coerceAll(t param.Type, choices []any, raw []string, display string) ([]any, error) {
	out := make([]any, 0, len(raw))
	for _, s := range raw {
		v, err := coerce(t, choices, s)
		if err != nil {
			return nil, withParam(err, display)
		}
		out = append(out, v)
	}
	return out, nil
}

// unpackArgs splits positional args among arguments taking nargs values
// each. At most one argument may be unlimited; arguments before it take from
// the front and those after it from the back. Groups may come back short
// when too few args were given; leftover args are returned as rest.
func unpackArgs(args []string, nargs []int) (groups [][]string, rest []string) {
	groups = make([][]string, len(nargs))
	front := 0
	i := 0
	for ; i < len(nargs) && nargs[i] != param.Unlimited; i++ {
		take := min(nargs[i], len(args)-front)
		groups[i] = args[front : front+take]
		front += take
	}
	if i == len(nargs) {
		return groups, args[front:]
	}
	back := len(args)
	for j := len(nargs) - 1; j > i; j-- {
		take := min(nargs[j], back-front)
		groups[j] = args[back-take : back]
		back -= take
	}
	groups[i] = args[front:back]
	return groups, nil
}
