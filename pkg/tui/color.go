// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"os"

	"github.com/fatih/color"
)

const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[31m"
	ColorGreen  = "\x1b[32m"
	ColorYellow = "\x1b[33m"
	ColorDim    = "\x1b[90m"
)

// Colorizer paints text when Enabled. It ignores fatih/color's global
// NoColor so callers decide per output stream.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns an enabled Colorizer unless enabled is false, NO_COLOR
// is set or TERM is empty or dumb.
func NewColorizer(enabled bool) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

// Wrap surrounds text with a raw escape code.
func (c Colorizer) Wrap(code, text string) string {
	if !c.Enabled || code == "" {
		return text
	}
	return code + text + ColorReset
}

// Paint renders text in the given foreground.
func (c Colorizer) Paint(fg color.Attribute, text string) string {
	if !c.Enabled || text == "" {
		return text
	}
	col := color.New(fg)
	col.EnableColor()
	return col.Sprint(text)
}
