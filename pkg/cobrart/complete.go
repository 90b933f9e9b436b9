// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrart

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeetrun/sigcli/pkg/param"
)

// completer returns the completion source of a parameter: its callback, or
// its choice set.
func completer(c param.Completion, choices []any) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch {
	case c != nil:
		return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return c(cmd.Context(), args, toComplete), cobra.ShellCompDirectiveNoFileComp
		}
	case len(choices) > 0:
		all := choiceStrings(choices)
		return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var out []string
			for _, s := range all {
				if strings.HasPrefix(s, toComplete) {
					out = append(out, s)
				}
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		}
	}
	return nil
}

func (b *Binding) registerFlagCompletion(o *Option) error {
	f := completer(o.args.Completion, o.args.Choices)
	if f == nil {
		return nil
	}
	return b.cmd.RegisterFlagCompletionFunc(o.long, f)
}

// argumentAt returns the argument that would receive the positional value at
// index pos.
func (b *Binding) argumentAt(pos int) *Argument {
	for _, a := range b.args {
		if a.unlimited() {
			return a
		}
		if pos < a.args.Nargs {
			return a
		}
		pos -= a.args.Nargs
	}
	return nil
}

func (b *Binding) completeArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a := b.argumentAt(len(args))
	if a == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if f := completer(a.args.Completion, a.args.Choices); f != nil {
		return f(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveDefault
}
