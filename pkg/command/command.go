// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package command assembles inferred parameters into runnable cobra commands
// with coloured help.
//
//	cmd, err := command.New("greet", sig.New().
//		Positional("name", shape.OfString()).
//		Param("count", shape.OfInt(), sig.Default(1)),
//		func(ctx context.Context, v cobrart.Values) error {
//			for range v.Int("count") {
//				fmt.Println("Hello", v.String("name"))
//			}
//			return nil
//		})
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yeetrun/sigcli/pkg/cobrart"
	"github.com/yeetrun/sigcli/pkg/infer"
	"github.com/yeetrun/sigcli/pkg/param"
	"github.com/yeetrun/sigcli/pkg/sig"
	"tailscale.com/types/logger"
)

// Callback runs a command with its resolved parameter values.
type Callback func(ctx context.Context, v cobrart.Values) error

// Command is a runnable command built from inferred parameters.
type Command struct {
	Name       string
	Help       string
	Epilog     string
	ShortHelp  string
	Hidden     bool
	Deprecated bool
	// Colors may be changed until help is rendered.
	Colors Colors
	// NoColor disables colour in help regardless of the terminal.
	NoColor bool

	cobra    *cobra.Command
	binding  *cobrart.Binding
	callback Callback
	subs     []*Command
	noHelp   bool
}

type config struct {
	help       string
	epilog     string
	shortHelp  string
	hidden     bool
	deprecated string
	colors     Colors
	engine     *infer.Engine
	runtime    *cobrart.Runtime
	logf       logger.Logf
	noHelp     bool
}

// Option configures a command.
type Option func(*config)

func WithHelp(s string) Option {
	return func(c *config) { c.help = s }
}

// WithEpilog sets text printed after everything else in help.
func WithEpilog(s string) Option {
	return func(c *config) { c.epilog = s }
}

// WithShortHelp sets the one-line description shown in a group's listing.
// It defaults to the first line of the help.
func WithShortHelp(s string) Option {
	return func(c *config) { c.shortHelp = s }
}

func WithHidden(hidden bool) Option {
	return func(c *config) { c.hidden = hidden }
}

// WithDeprecated marks the command deprecated; msg is shown on use.
func WithDeprecated(msg string) Option {
	return func(c *config) {
		if msg == "" {
			msg = "it will be removed in a future release"
		}
		c.deprecated = msg
	}
}

func WithColors(cs Colors) Option {
	return func(c *config) { c.colors = cs }
}

// WithEngine sets the inference engine used by New and For. If its runtime
// is a *cobrart.Runtime the command resolves values through it.
func WithEngine(e *infer.Engine) Option {
	return func(c *config) { c.engine = e }
}

// WithRuntime sets the runtime parameters are realised and resolved with.
func WithRuntime(rt *cobrart.Runtime) Option {
	return func(c *config) { c.runtime = rt }
}

func WithLogf(logf logger.Logf) Option {
	return func(c *config) { c.logf = logf }
}

// WithoutHelpOption removes the --help option.
func WithoutHelpOption() Option {
	return func(c *config) { c.noHelp = true }
}

func newConfig(opts []Option) *config {
	c := &config{colors: DefaultColors()}
	for _, o := range opts {
		o(c)
	}
	if c.runtime == nil && c.engine != nil {
		c.runtime, _ = c.engine.Runtime.(*cobrart.Runtime)
	}
	if c.runtime == nil {
		c.runtime = cobrart.New()
		if c.logf != nil {
			c.runtime.Logf = c.logf
		}
	}
	if c.engine == nil {
		c.engine = infer.New(c.runtime, c.logf)
	}
	return c
}

// Assemble builds a command from the parameters accumulated in list, taking
// them out of it. The parameters must have been realised by a
// *cobrart.Runtime.
func Assemble(name string, list *infer.ParamList, fn Callback, opts ...Option) (*Command, error) {
	return assemble(name, list, fn, newConfig(opts))
}

func assemble(name string, list *infer.ParamList, fn Callback, cfg *config) (*Command, error) {
	if name == "" {
		return nil, &infer.ConfigError{Err: errors.New("command needs a name")}
	}
	name = sig.Hyphenate(name)
	var params []param.Native
	if list != nil {
		params = list.Take()
	}

	c := &Command{
		Name:       name,
		Help:       cfg.help,
		Epilog:     cfg.epilog,
		ShortHelp:  cfg.shortHelp,
		Hidden:     cfg.hidden,
		Deprecated: cfg.deprecated != "",
		Colors:     cfg.colors,
		callback:   fn,
		noHelp:     cfg.noHelp,
	}
	c.cobra = &cobra.Command{
		Use:           name,
		Short:         c.short(),
		Long:          cfg.help,
		Hidden:        cfg.hidden,
		Deprecated:    cfg.deprecated,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var reserved []string
	if !cfg.noHelp {
		reserved = []string{"--help", "-h"}
	}
	b, err := cfg.runtime.Bind(c.cobra, params, reserved...)
	if err != nil {
		ce := &infer.ConfigError{Err: fmt.Errorf("command %s: %w", name, err)}
		var re *cobrart.ReservedError
		if errors.As(err, &re) {
			ce.Param = re.Param
		}
		return nil, ce
	}
	c.binding = b
	c.cobra.RunE = c.run
	c.setup()
	return c, nil
}

// setup wires help and error handling shared by commands and groups.
func (c *Command) setup() {
	c.cobra.SetHelpFunc(func(cc *cobra.Command, _ []string) {
		c.writeHelp(cc.OutOrStdout(), cc)
	})
	c.cobra.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cobrart.UsageError{Msg: err.Error(), Err: err}
	})
	// A parameter may own --help once the help option is off.
	if c.noHelp && c.cobra.Flags().Lookup("help") == nil {
		f := c.cobra.Flags().VarPF(noHelp{}, "help", "", "")
		f.NoOptDefVal = "true"
		f.Hidden = true
	}
}

func (c *Command) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	vals, err := c.binding.Resolve(ctx, args)
	if errors.Is(err, cobrart.ErrStop) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.callback == nil {
		return nil
	}
	return c.callback(ctx, vals)
}

func (c *Command) short() string {
	if c.ShortHelp != "" {
		return c.ShortHelp
	}
	first, _, _ := strings.Cut(strings.TrimSpace(c.Help), "\n")
	return first
}

// New infers parameters for s and assembles them into a command.
func New(name string, s *sig.Signature, fn Callback, opts ...Option) (*Command, error) {
	cfg := newConfig(opts)
	var list infer.ParamList
	if err := cfg.engine.Walk(s, &list); err != nil {
		return nil, err
	}
	return assemble(name, &list, fn, cfg)
}

// For builds a command whose parameters are the fields of T (see sig.Of).
// fn receives a T populated from the resolved values.
func For[T any](name string, fn func(context.Context, T) error, opts ...Option) (*Command, error) {
	s, err := sig.Of[T]()
	if err != nil {
		return nil, &infer.ConfigError{Err: err}
	}
	return New(name, s, func(ctx context.Context, v cobrart.Values) error {
		var args T
		if err := sig.Populate(&args, v); err != nil {
			return err
		}
		return fn(ctx, args)
	}, opts...)
}

// Group returns a command that dispatches to cmds by name.
func Group(name, help string, cmds ...*Command) *Command {
	g := &Command{
		Name:   sig.Hyphenate(name),
		Help:   help,
		Colors: DefaultColors(),
	}
	g.cobra = &cobra.Command{
		Use:           g.Name,
		Short:         g.short(),
		Long:          help,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.setup()
	g.Add(cmds...)
	return g
}

// Add attaches subcommands to a group.
func (c *Command) Add(cmds ...*Command) {
	for _, sub := range cmds {
		c.subs = append(c.subs, sub)
		c.cobra.AddCommand(sub.cobra)
	}
}

// Cobra returns the underlying cobra command.
func (c *Command) Cobra() *cobra.Command { return c.cobra }

// Params returns the command's realised parameters in declaration order.
func (c *Command) Params() []param.Native {
	if c.binding == nil {
		return nil
	}
	return c.binding.Params()
}

// Commands returns a group's subcommands.
func (c *Command) Commands() []*Command { return c.subs }

// SetOutput directs help and usage output to w.
func (c *Command) SetOutput(w io.Writer) {
	c.cobra.SetOut(w)
	c.cobra.SetErr(w)
}

// Execute parses args, resolves parameters and runs the callback.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if args == nil {
		args = []string{}
	}
	c.reset()
	c.cobra.SetArgs(args)
	return c.cobra.ExecuteContext(ctx)
}

func (c *Command) reset() {
	if c.binding != nil {
		c.binding.Reset()
	} else {
		cobrart.ResetFlags(c.cobra.Flags())
	}
	for _, sub := range c.subs {
		sub.reset()
	}
}

// noHelp takes the place of cobra's --help flag and rejects its use.
type noHelp struct{}

func (noHelp) String() string { return "false" }
func (noHelp) Type() string   { return "bool" }
func (noHelp) Set(string) error {
	return errors.New("no such option: --help")
}

var _ pflag.Value = noHelp{}
