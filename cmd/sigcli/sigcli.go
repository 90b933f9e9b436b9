// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The sigcli command inspects, checks and runs commands declared in
// manifests (sigcli.toml, sigcli.yaml or sigcli.hcl).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"github.com/yeetrun/sigcli/pkg/cobrart"
	"github.com/yeetrun/sigcli/pkg/manifest"
	"tailscale.com/types/logger"
)

type globalFlagsParsed struct {
	Verbose bool `flag:"verbose" short:"v" help:"Log inference decisions to stderr"`
	NoColor bool `flag:"no-color" help:"Disable colour output"`
}

type globals struct {
	logf    logger.Logf
	noColor bool
	stdout  io.Writer
	stderr  io.Writer
}

var global = globals{
	logf:   logger.Discard,
	stdout: os.Stdout,
	stderr: os.Stderr,
}

// splitLeading returns the flags that precede the first positional argument
// and everything from that argument on. Flags named in valued consume the
// following argument when written without "=".
func splitLeading(args []string, valued ...string) (flags, rest []string) {
	i := 0
	for i < len(args) {
		a := args[i]
		if a == "--" {
			return args[:i], args[i+1:]
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			break
		}
		i++
		if strings.Contains(a, "=") {
			continue
		}
		name := strings.TrimLeft(a, "-")
		for _, v := range valued {
			if name == v && i < len(args) {
				i++
				break
			}
		}
	}
	return args[:i], args[i:]
}

func parseGlobalFlags(args []string) (globalFlagsParsed, []string, error) {
	lead, rest := splitLeading(args)
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](lead, yargs.KnownFlagsOptions{})
	if err != nil {
		return globalFlagsParsed{}, nil, err
	}
	return result.Flags, append(result.RemainingArgs, rest...), nil
}

// loadManifest loads path, or the manifest found above the working
// directory when path is empty.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		found, err := manifest.FindFromCwd()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no manifest found (looked for %s); pass --manifest", strings.Join(manifest.Names, ", "))
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	return manifest.Load(path)
}

func newRuntime() *cobrart.Runtime {
	rt := cobrart.New()
	rt.Logf = global.logf
	return rt
}

func buildHelpConfig() yargs.HelpConfig {
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        "sigcli",
			Description: "Inspect, check and run commands declared in sigcli manifests.",
			Examples: []string{
				"sigcli inspect",
				"sigcli inspect --format=json deploy",
				"sigcli check ops.toml tools.hcl",
				"sigcli run deploy web --level high",
			},
		},
		SubCommands: map[string]yargs.SubCommandInfo{
			"inspect": {
				Name:        "inspect",
				Description: "Show the parameters inferred for each command",
				Usage:       "[--manifest=PATH] [--format=table|json|yaml] [COMMAND...]",
			},
			"check": {
				Name:        "check",
				Description: "Load manifests and infer every command, reporting failures",
				Usage:       "[--jobs=N] [MANIFEST...]",
			},
			"run": {
				Name:        "run",
				Description: "Run a manifest command and print the values it receives",
				Usage:       "[--manifest=PATH] COMMAND [ARGS...]",
				Examples:    []string{"sigcli run deploy web --replicas 3"},
			},
		},
	}
}

func main() {
	log.SetFlags(0)
	gf, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if gf.Verbose {
		global.logf = log.Printf
	}
	if gf.NoColor {
		global.noColor = true
		color.NoColor = true
	}

	handlers := map[string]yargs.SubcommandHandler{
		"inspect": handleInspect,
		"check":   handleCheck,
		"run":     handleRun,
	}
	ctx := context.Background()
	if len(args) > 0 && args[0] == "run" {
		// yargs would answer --help itself; the manifest command should.
		err = handleRun(ctx, args)
	} else {
		err = yargs.RunSubcommands(ctx, args, buildHelpConfig(), globalFlagsParsed{}, handlers)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *cobrart.UsageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// stripCommand drops the subcommand name yargs leaves at the front.
func stripCommand(args []string, name string) []string {
	if len(args) > 0 && args[0] == name {
		return args[1:]
	}
	return args
}
