// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shayne/yargs"
	"github.com/yeetrun/sigcli/pkg/infer"
	"github.com/yeetrun/sigcli/pkg/manifest"
	"github.com/yeetrun/sigcli/pkg/param"
	"gopkg.in/yaml.v3"
)

type inspectFlagsParsed struct {
	Manifest string `flag:"manifest" short:"m" help:"Manifest to read (default: search upwards from the working directory)"`
	Format   string `flag:"format" help:"Output format: table, json or yaml"`
}

// paramInfo is what inference decided for one parameter.
type paramInfo struct {
	Command   string   `json:"command" yaml:"command"`
	Name      string   `json:"name" yaml:"name"`
	Kind      string   `json:"kind" yaml:"kind"`
	Type      string   `json:"type" yaml:"type"`
	Param     string   `json:"param" yaml:"param"`
	Decls     []string `json:"decls" yaml:"decls"`
	ValueType string   `json:"value_type" yaml:"value_type"`
	Default   any      `json:"default,omitempty" yaml:"default,omitempty"`
	Required  bool     `json:"required" yaml:"required"`
	Flag      bool     `json:"flag,omitempty" yaml:"flag,omitempty"`
	Multiple  bool     `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Nargs     int      `json:"nargs,omitempty" yaml:"nargs,omitempty"`
	Choices   []any    `json:"choices,omitempty" yaml:"choices,omitempty"`
}

func handleInspect(_ context.Context, args []string) error {
	args = stripCommand(args, "inspect")
	result, err := yargs.ParseFlags[inspectFlagsParsed](args)
	if err != nil {
		return err
	}
	m, err := loadManifest(result.Flags.Manifest)
	if err != nil {
		return err
	}
	infos, err := describeManifest(m, result.Args, infer.New(newRuntime(), global.logf))
	if err != nil {
		return err
	}
	return renderInfos(global.stdout, result.Flags.Format, infos)
}

// describeManifest runs inference without realising anything. only limits
// the output to the named commands.
func describeManifest(m *manifest.Manifest, only []string, e *infer.Engine) ([]paramInfo, error) {
	var cmds []*manifest.Command
	if len(only) == 0 {
		for i := range m.Commands {
			cmds = append(cmds, &m.Commands[i])
		}
	}
	for _, name := range only {
		c, ok := m.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%s: no command %q", m.Path, name)
		}
		cmds = append(cmds, c)
	}

	var out []paramInfo
	for _, c := range cmds {
		s, err := c.Signature()
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", c.Name, err)
		}
		for _, p := range s.Params {
			d, err := e.Describe(p)
			if err != nil {
				return nil, fmt.Errorf("command %s: %w", c.Name, err)
			}
			out = append(out, paramInfo{
				Command:   c.Name,
				Name:      p.Name,
				Kind:      p.Kind.String(),
				Type:      p.Shape.String(),
				Param:     d.Kind().String(),
				Decls:     d.Decls,
				ValueType: d.Type.String(),
				Default:   d.Default,
				Required:  d.Required,
				Flag:      d.IsFlag,
				Multiple:  d.Multiple,
				Nargs:     d.Nargs,
				Choices:   d.Choices,
			})
		}
	}
	return out, nil
}

func renderInfos(w io.Writer, format string, infos []paramInfo) error {
	switch strings.ToLower(format) {
	case "", "table":
		return renderTable(w, infos)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
}

func renderTable(w io.Writer, infos []paramInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "COMMAND\tPARAM\tKIND\tTYPE\tAS\tDEFAULT\tREQUIRED")
	for _, in := range infos {
		as := in.Param + " " + strings.Join(in.Decls, "/")
		switch {
		case in.Flag:
			as += " (flag)"
		case in.Multiple:
			as += " (repeatable)"
		case in.Nargs == param.Unlimited:
			as += " (variadic)"
		}
		def := "-"
		if in.Default != nil {
			def = fmt.Sprint(in.Default)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%v\n", in.Command, in.Name, in.Kind, in.Type, as, def, in.Required)
	}
	return tw.Flush()
}
