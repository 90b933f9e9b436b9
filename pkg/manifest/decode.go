// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/yeetrun/sigcli/pkg/shape"
	"gopkg.in/yaml.v3"
)

func decodeTOML(content []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(content), &m)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(names, ", "))
	}
	return &m, nil
}

func decodeYAML(content []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty manifest")
		}
		return nil, err
	}
	return &m, nil
}

// hclManifest is the HCL form:
//
//	version = "1"
//	name    = "ops"
//
//	command "deploy" {
//	  help = "Deploy an application."
//	  param "level" {
//	    kind    = "keyword_only"
//	    type    = literal("low", "high")
//	    default = "low"
//	  }
//	}
type hclManifest struct {
	Version  string        `hcl:"version,optional"`
	Name     string        `hcl:"name,optional"`
	Help     string        `hcl:"help,optional"`
	Commands []*hclCommand `hcl:"command,block"`
}

type hclCommand struct {
	Name       string            `hcl:"name,label"`
	Help       string            `hcl:"help,optional"`
	ShortHelp  string            `hcl:"short_help,optional"`
	Epilog     string            `hcl:"epilog,optional"`
	Hidden     bool              `hcl:"hidden,optional"`
	Deprecated string            `hcl:"deprecated,optional"`
	Colors     map[string]string `hcl:"colors,optional"`
	Params     []*hclParam       `hcl:"param,block"`
}

type hclParam struct {
	Name    string         `hcl:"name,label"`
	Kind    string         `hcl:"kind,optional"`
	Type    hcl.Expression `hcl:"type,optional"`
	Default hcl.Expression `hcl:"default,optional"`
	Help    string         `hcl:"help,optional"`
	Env     string         `hcl:"env,optional"`
}

func decodeHCL(content []byte, filename string) (*Manifest, error) {
	f, diags := hclparse.NewParser().ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	var root hclManifest
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	m := &Manifest{
		Version: root.Version,
		Name:    root.Name,
		Help:    root.Help,
	}
	for _, hc := range root.Commands {
		c := Command{
			Name:       hc.Name,
			Help:       hc.Help,
			ShortHelp:  hc.ShortHelp,
			Epilog:     hc.Epilog,
			Hidden:     hc.Hidden,
			Deprecated: hc.Deprecated,
			Colors:     hc.Colors,
		}
		for _, hp := range hc.Params {
			p, err := hp.param()
			if err != nil {
				return nil, fmt.Errorf("command %q: parameter %q: %w", hc.Name, hp.Name, err)
			}
			c.Params = append(c.Params, p)
		}
		m.Commands = append(m.Commands, c)
	}
	return m, nil
}

func (hp *hclParam) param() (Param, error) {
	p := Param{
		Name: hp.Name,
		Kind: hp.Kind,
		Help: hp.Help,
		Env:  hp.Env,
	}
	// An absent attribute decodes as an expression evaluating to null; type
	// keywords fail to evaluate without a context and are never null.
	if !isNull(hp.Type) {
		sh, err := shape.FromExpr(hp.Type)
		if err != nil {
			return Param{}, err
		}
		p.shape = sh
		p.Type = sh.String()
	}
	if hp.Default != nil {
		v, diags := hp.Default.Value(nil)
		if diags.HasErrors() {
			return Param{}, fmt.Errorf("default must be a literal value: %w", diags)
		}
		native, err := shape.FromCty(v)
		if err != nil {
			return Param{}, fmt.Errorf("default: %w", err)
		}
		p.Default = native
	}
	return p, nil
}

func isNull(expr hcl.Expression) bool {
	if expr == nil {
		return true
	}
	v, diags := expr.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}
