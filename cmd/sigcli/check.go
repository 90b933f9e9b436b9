// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/shayne/yargs"
	"github.com/yeetrun/sigcli/pkg/command"
	"github.com/yeetrun/sigcli/pkg/manifest"
	"github.com/yeetrun/sigcli/pkg/tui"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type checkFlagsParsed struct {
	Jobs int `flag:"jobs" short:"j" help:"Manifests checked at once (default 4)"`
}

// checkResult is the outcome for one manifest.
type checkResult struct {
	Path     string
	Commands int
	Params   int
	Err      error
}

func handleCheck(ctx context.Context, args []string) error {
	args = stripCommand(args, "check")
	result, err := yargs.ParseFlags[checkFlagsParsed](args)
	if err != nil {
		return err
	}
	paths := result.Args
	if len(paths) == 0 {
		p, err := manifest.FindFromCwd()
		if err != nil {
			return fmt.Errorf("no manifest given and none found: %w", err)
		}
		paths = []string{p}
	}

	var sp *tui.Spinner
	if isTerminal(global.stderr) {
		paint := tui.NewColorizer(!global.noColor)
		sp = tui.NewSpinner(global.stderr, tui.WithColor(paint, tui.ColorYellow))
		sp.Start(fmt.Sprintf("checking %d manifests", len(paths)))
	}
	var done atomic.Int32
	results, err := checkAll(ctx, paths, result.Flags.Jobs, func() {
		if sp != nil {
			sp.Update(fmt.Sprintf("checked %d/%d manifests", done.Add(1), len(paths)))
		}
	})
	if sp != nil {
		sp.Stop(true)
	}
	if err != nil {
		return err
	}
	paint := tui.NewColorizer(!global.noColor && isTerminal(global.stdout))
	return reportCheck(global.stdout, paint, results)
}

// checkAll loads every manifest and builds its commands, jobs at a time.
// Per-manifest failures are recorded in the results; the returned error is
// only set when ctx ends first.
func checkAll(ctx context.Context, paths []string, jobs int, progress func()) ([]checkResult, error) {
	if jobs <= 0 {
		jobs = 4
	}
	results := make([]checkResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkOne(path)
			if progress != nil {
				progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkOne(path string) checkResult {
	res := checkResult{Path: path}
	m, err := manifest.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	root, err := m.Build(nil, command.WithRuntime(newRuntime()))
	if err != nil {
		res.Err = err
		return res
	}
	for _, c := range root.Commands() {
		res.Commands++
		res.Params += len(c.Params())
	}
	return res
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func reportCheck(w io.Writer, paint tui.Colorizer, results []checkResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s %s: %v\n", paint.Wrap(tui.ColorRed, "FAIL"), r.Path, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s   %s %s\n", paint.Wrap(tui.ColorGreen, "ok"), r.Path,
			paint.Wrap(tui.ColorDim, fmt.Sprintf("(%d commands, %d parameters)", r.Commands, r.Params)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d manifests failed", failed, len(results))
	}
	return nil
}
