// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shayne/yargs"
	"github.com/yeetrun/sigcli/pkg/cobrart"
	"github.com/yeetrun/sigcli/pkg/command"
	"github.com/yeetrun/sigcli/pkg/manifest"
)

type runFlagsParsed struct {
	Manifest string `flag:"manifest" short:"m" help:"Manifest to read (default: search upwards from the working directory)"`
}

// handleRun builds the manifest's commands and executes one of them. The
// callback prints the values it receives, which makes it easy to see what a
// manifest's command line resolves to.
func handleRun(ctx context.Context, args []string) error {
	args = stripCommand(args, "run")
	lead, rest := splitLeading(args, "manifest", "m")
	result, err := yargs.ParseKnownFlags[runFlagsParsed](lead, yargs.KnownFlagsOptions{})
	if err != nil {
		return err
	}
	if len(result.RemainingArgs) > 0 {
		return fmt.Errorf("unknown flag %s before the command name", result.RemainingArgs[0])
	}
	if len(rest) == 0 {
		return fmt.Errorf("missing command name\nUsage: sigcli run [--manifest=PATH] COMMAND [ARGS...]")
	}
	m, err := loadManifest(result.Flags.Manifest)
	if err != nil {
		return err
	}
	root, err := buildRoot(m, global.stdout)
	if err != nil {
		return err
	}
	return root.Execute(ctx, rest)
}

func buildRoot(m *manifest.Manifest, out io.Writer) (*command.Command, error) {
	root, err := m.Build(func(c *manifest.Command) command.Callback {
		return echoValues(out)
	}, command.WithRuntime(newRuntime()))
	if err != nil {
		return nil, err
	}
	root.NoColor = global.noColor
	for _, c := range root.Commands() {
		c.NoColor = global.noColor
	}
	root.SetOutput(out)
	return root, nil
}

func echoValues(w io.Writer) command.Callback {
	return func(_ context.Context, v cobrart.Values) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
