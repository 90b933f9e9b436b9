// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yeetrun/sigcli/pkg/tui"
)

// maxDeclWidth is the widest first column before help moves to its own line.
const maxDeclWidth = 30

type helpRow struct {
	decl, help string
}

// writeHelp renders the help page. Colour is used unless NoColor is set or
// fatih/color has decided the output cannot show it.
func (c *Command) writeHelp(w io.Writer, cc *cobra.Command) {
	paint := tui.NewColorizer(!c.NoColor && !color.NoColor)
	cs := c.Colors

	fmt.Fprintf(w, "Usage: %s %s\n", paint.Paint(cs.Command.attr(), cc.CommandPath()), c.usagePieces())

	help := c.Help
	if c.Deprecated {
		help = "(Deprecated) " + help
	}
	if help = strings.TrimSpace(help); help != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(help, "\n") {
			fmt.Fprintf(w, "  %s\n", paint.Paint(cs.CommandHelp.attr(), line))
		}
	}

	var args, opts, cmds []helpRow
	if c.binding != nil {
		for _, a := range c.binding.Arguments() {
			decl, h := a.HelpRecord()
			args = append(args, helpRow{decl, h})
		}
		for _, o := range c.binding.Options() {
			if o.Hidden() {
				continue
			}
			decl, h := o.HelpRecord()
			opts = append(opts, helpRow{decl, h})
		}
	}
	if !c.noHelp {
		opts = append(opts, helpRow{"-h, --help", "Show this message and exit."})
	}
	for _, sub := range c.subs {
		if sub.Hidden {
			continue
		}
		cmds = append(cmds, helpRow{sub.Name, sub.short()})
	}

	writeSection(w, paint, "Arguments", args, cs.Arguments, cs.ArgumentsHelp)
	writeSection(w, paint, "Options", opts, cs.Options, cs.OptionsHelp)
	writeSection(w, paint, "Commands", cmds, cs.Command, cs.CommandHelp)

	if e := strings.TrimSpace(c.Epilog); e != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(e, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func (c *Command) usagePieces() string {
	if len(c.subs) > 0 {
		return "[OPTIONS] COMMAND [ARGS]..."
	}
	pieces := []string{"[OPTIONS]"}
	if c.binding != nil {
		for _, a := range c.binding.Arguments() {
			pieces = append(pieces, a.Metavar())
		}
	}
	return strings.Join(pieces, " ")
}

func writeSection(w io.Writer, paint tui.Colorizer, title string, rows []helpRow, declColor, helpColor Color) {
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, r := range rows {
		if n := len(r.decl); n > width && n <= maxDeclWidth {
			width = n
		}
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, r := range rows {
		decl := paint.Paint(declColor.attr(), r.decl)
		h := paint.Paint(helpColor.attr(), r.help)
		switch {
		case r.help == "":
			fmt.Fprintf(w, "  %s\n", decl)
		case len(r.decl) > maxDeclWidth:
			fmt.Fprintf(w, "  %s\n  %s  %s\n", decl, strings.Repeat(" ", width), h)
		default:
			fmt.Fprintf(w, "  %s%s  %s\n", decl, strings.Repeat(" ", width-len(r.decl)), h)
		}
	}
}
