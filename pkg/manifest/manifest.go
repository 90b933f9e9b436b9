// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package manifest declares command signatures in TOML, YAML or HCL files so
// a command line can be described without Go code.
//
// A TOML manifest looks like:
//
//	version = "1"
//	name = "ops"
//
//	[[commands]]
//	name = "deploy"
//	help = "Deploy an application."
//	colors = { options = "red" }
//
//	[[commands.params]]
//	name = "app"
//	kind = "positional_only"
//	type = "string"
//
//	[[commands.params]]
//	name = "level"
//	kind = "keyword_only"
//	type = 'literal("low", "high")'
//	default = "low"
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/sigcli/pkg/command"
	"github.com/yeetrun/sigcli/pkg/shape"
	"github.com/yeetrun/sigcli/pkg/sig"
	"tailscale.com/util/set"
)

// Version is the manifest format version written by this package.
const Version = "1.0.0"

// supported is the range of manifest versions this package reads.
var supported = mustConstraint("^1.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Names are the file names Find looks for, in order of preference.
var Names = []string{"sigcli.toml", "sigcli.yaml", "sigcli.yml", "sigcli.hcl"}

// Manifest is a set of commands sharing a root.
type Manifest struct {
	Version  string    `toml:"version" yaml:"version" json:"version"`
	Name     string    `toml:"name" yaml:"name" json:"name"`
	Help     string    `toml:"help,omitempty" yaml:"help,omitempty" json:"help,omitempty"`
	Commands []Command `toml:"commands" yaml:"commands" json:"commands"`

	// Path is the file the manifest was read from.
	Path string `toml:"-" yaml:"-" json:"-"`
}

// Command declares one command.
type Command struct {
	Name       string            `toml:"name" yaml:"name" json:"name"`
	Help       string            `toml:"help,omitempty" yaml:"help,omitempty" json:"help,omitempty"`
	ShortHelp  string            `toml:"short_help,omitempty" yaml:"short_help,omitempty" json:"short_help,omitempty"`
	Epilog     string            `toml:"epilog,omitempty" yaml:"epilog,omitempty" json:"epilog,omitempty"`
	Hidden     bool              `toml:"hidden,omitempty" yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Deprecated string            `toml:"deprecated,omitempty" yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Colors     map[string]string `toml:"colors,omitempty" yaml:"colors,omitempty" json:"colors,omitempty"`
	Params     []Param           `toml:"params" yaml:"params" json:"params"`
}

// Param declares one parameter. Type is a type expression as accepted by
// shape.Parse. Default is either text, parsed for the type, or a native
// scalar or list.
type Param struct {
	Name    string `toml:"name" yaml:"name" json:"name"`
	Kind    string `toml:"kind,omitempty" yaml:"kind,omitempty" json:"kind,omitempty"`
	Type    string `toml:"type" yaml:"type" json:"type"`
	Default any    `toml:"default,omitempty" yaml:"default,omitempty" json:"default,omitempty"`
	Help    string `toml:"help,omitempty" yaml:"help,omitempty" json:"help,omitempty"`
	Env     string `toml:"env,omitempty" yaml:"env,omitempty" json:"env,omitempty"`

	// shape is set when the loader already parsed the type.
	shape shape.Shape
}

// Find walks up from startDir and returns the first manifest found. It
// returns os.ErrNotExist when there is none.
func Find(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		for _, name := range Names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !os.IsNotExist(err) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// FindFromCwd is Find starting at the working directory.
func FindFromCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return Find(cwd)
}

// Load reads the manifest at path, choosing the format by extension, and
// validates it.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m *Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		m, err = decodeTOML(content)
	case ".yaml", ".yml":
		m, err = decodeYAML(content)
	case ".hcl":
		m, err = decodeHCL(content, path)
	default:
		return nil, fmt.Errorf("%s: unknown manifest format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m.Path = path
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks the format version and that commands are named uniquely.
// Parameters are checked when the signature is inferred.
func (m *Manifest) Validate() error {
	if err := checkVersion(m.Version); err != nil {
		return err
	}
	if len(m.Commands) == 0 {
		return errors.New("manifest declares no commands")
	}
	seen := make(set.Set[string])
	for i, c := range m.Commands {
		if c.Name == "" {
			return fmt.Errorf("command %d has no name", i)
		}
		name := sig.Hyphenate(c.Name)
		if seen.Contains(name) {
			return fmt.Errorf("duplicate command %q", c.Name)
		}
		seen.Add(name)
	}
	return nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid manifest version %q: %w", v, err)
	}
	if !supported.Check(ver) {
		return fmt.Errorf("manifest version %s is not supported (want %s)", ver, supported)
	}
	return nil
}

// Lookup returns the command called name.
func (m *Manifest) Lookup(name string) (*Command, bool) {
	name = sig.Hyphenate(name)
	for i := range m.Commands {
		if sig.Hyphenate(m.Commands[i].Name) == name {
			return &m.Commands[i], true
		}
	}
	return nil, false
}

// Signature builds the signature c declares. A parameter without a type has
// a zero shape and is rejected when inferred.
func (c *Command) Signature() (*sig.Signature, error) {
	s := sig.New()
	for _, p := range c.Params {
		sp, err := p.param()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		s.Add(sp)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p Param) param() (sig.Param, error) {
	kind, err := sig.ParseKind(p.Kind)
	if err != nil {
		return sig.Param{}, err
	}
	sh := p.shape
	if sh.IsZero() && strings.TrimSpace(p.Type) != "" {
		if sh, err = shape.Parse(p.Type); err != nil {
			return sig.Param{}, err
		}
	}
	out := sig.Param{
		Name:   p.Name,
		Kind:   kind,
		Shape:  sh,
		Help:   p.Help,
		EnvVar: p.Env,
	}
	if p.Default != nil && !sh.IsZero() {
		v, err := convertDefault(sh, p.Default)
		if err != nil {
			return sig.Param{}, fmt.Errorf("invalid default: %w", err)
		}
		out.Default, out.HasDefault = v, true
	}
	return out, nil
}

// convertDefault turns a decoded default into the value a parameter shaped
// sh holds. Decoders disagree on numeric types, so scalars go through their
// text form.
func convertDefault(sh shape.Shape, v any) (any, error) {
	list, isList := v.([]any)
	if !sh.Origin().IsSequence() || sh.Kind() == shape.String {
		if isList {
			return nil, fmt.Errorf("list given for %s", sh)
		}
		return shape.ParseDefault(sh, fmt.Sprint(v))
	}
	if !isList {
		return shape.ParseDefault(sh, fmt.Sprint(v))
	}
	elem, _ := sh.Elem()
	out := make([]any, 0, len(list))
	for _, e := range list {
		ev, err := shape.ParseDefault(elem, fmt.Sprint(e))
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Options returns the command options c declares.
func (c *Command) Options() ([]command.Option, error) {
	opts := []command.Option{
		command.WithHelp(c.Help),
		command.WithEpilog(c.Epilog),
		command.WithShortHelp(c.ShortHelp),
		command.WithHidden(c.Hidden),
	}
	if c.Deprecated != "" {
		opts = append(opts, command.WithDeprecated(c.Deprecated))
	}
	if len(c.Colors) > 0 {
		cs := command.DefaultColors()
		for slot, name := range c.Colors {
			col, err := command.ParseColor(name)
			if err != nil {
				return nil, fmt.Errorf("colors.%s: %w", slot, err)
			}
			if err := cs.Set(slot, col); err != nil {
				return nil, err
			}
		}
		opts = append(opts, command.WithColors(cs))
	}
	return opts, nil
}

// Build assembles the manifest's commands under a group named after it. run,
// if not nil, supplies each command's callback. opts apply to every command
// before the command's own options.
func (m *Manifest) Build(run func(*Command) command.Callback, opts ...command.Option) (*command.Command, error) {
	cmds := make([]*command.Command, 0, len(m.Commands))
	for i := range m.Commands {
		c := &m.Commands[i]
		cmd, err := c.Build(run, opts...)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return command.Group(m.Name, m.Help, cmds...), nil
}

// Build assembles c on its own.
func (c *Command) Build(run func(*Command) command.Callback, opts ...command.Option) (*command.Command, error) {
	s, err := c.Signature()
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", c.Name, err)
	}
	own, err := c.Options()
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", c.Name, err)
	}
	var fn command.Callback
	if run != nil {
		fn = run(c)
	}
	all := append(append([]command.Option(nil), opts...), own...)
	cmd, err := command.New(c.Name, s, fn, all...)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", c.Name, err)
	}
	return cmd, nil
}
