// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"fmt"

	"github.com/fatih/color"
)

// Color is a help text display colour.
type Color string

const (
	Black        Color = "black"
	Red          Color = "red"
	Green        Color = "green"
	Yellow       Color = "yellow"
	Blue         Color = "blue"
	Magenta      Color = "magenta"
	Cyan         Color = "cyan"
	White        Color = "white"
	BrightBlack  Color = "bright_black"
	BrightRed    Color = "bright_red"
	BrightYellow Color = "bright_yellow"
	BrightBlue   Color = "bright_blue"
)

var colorAttrs = map[Color]color.Attribute{
	Black:        color.FgBlack,
	Red:          color.FgRed,
	Green:        color.FgGreen,
	Yellow:       color.FgYellow,
	Blue:         color.FgBlue,
	Magenta:      color.FgMagenta,
	Cyan:         color.FgCyan,
	White:        color.FgWhite,
	BrightBlack:  color.FgHiBlack,
	BrightRed:    color.FgHiRed,
	BrightYellow: color.FgHiYellow,
	BrightBlue:   color.FgHiBlue,
}

// ParseColor validates a colour name.
func ParseColor(s string) (Color, error) {
	c := Color(s)
	if _, ok := colorAttrs[c]; !ok {
		return "", fmt.Errorf("unknown color %q", s)
	}
	return c, nil
}

func (c Color) attr() color.Attribute {
	if a, ok := colorAttrs[c]; ok {
		return a
	}
	return color.FgWhite
}

// Colors are the display colours of a command's help sections.
type Colors struct {
	Arguments     Color
	ArgumentsHelp Color
	Options       Color
	OptionsHelp   Color
	Command       Color
	CommandHelp   Color
}

// DefaultColors is white everywhere.
func DefaultColors() Colors {
	return Colors{
		Arguments:     White,
		ArgumentsHelp: White,
		Options:       White,
		OptionsHelp:   White,
		Command:       White,
		CommandHelp:   White,
	}
}

// Set assigns the slot called name, e.g. "options_help", to c.
func (cs *Colors) Set(name string, c Color) error {
	if _, err := ParseColor(string(c)); err != nil {
		return err
	}
	switch name {
	case "arguments":
		cs.Arguments = c
	case "arguments_help":
		cs.ArgumentsHelp = c
	case "options":
		cs.Options = c
	case "options_help":
		cs.OptionsHelp = c
	case "command":
		cs.Command = c
	case "command_help":
		cs.CommandHelp = c
	default:
		return fmt.Errorf("unknown color slot %q", name)
	}
	return nil
}
