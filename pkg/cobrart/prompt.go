// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrart

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompt asks for o's value. ok is false when the user accepted the default.
func (b *Binding) prompt(o *Option) (value string, ok bool, err error) {
	text := o.args.Prompt
	switch {
	case o.args.IsFlag:
		if on, _ := o.args.Default.(bool); on {
			text += " [Y/n]"
		} else {
			text += " [y/N]"
		}
	case o.args.Default != nil:
		text += " [" + formatValue(o.args.Default) + "]"
	}
	text += ": "

	for {
		s, err := b.readLine(text, o.args.HideInput)
		if err != nil {
			return "", false, err
		}
		if s == "" {
			if o.args.Default != nil || o.args.IsFlag {
				return "", false, nil
			}
			continue
		}
		if o.args.ConfirmationPrompt {
			again, err := b.readLine("Repeat for confirmation: ", o.args.HideInput)
			if err != nil {
				return "", false, err
			}
			if again != s {
				return "", false, &UsageError{Param: o.display(), Msg: fmt.Sprintf("%s: the two entered values do not match", o.display())}
			}
		}
		return s, true, nil
	}
}

func (b *Binding) readLine(text string, hide bool) (string, error) {
	stderr := b.rt.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	fmt.Fprint(stderr, text)

	if f, ok := b.rt.Stdin.(*os.File); ok && hide && isTerminalFn(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(pw), nil
	}

	if b.in == nil {
		in := b.rt.Stdin
		if in == nil {
			in = os.Stdin
		}
		b.in = bufio.NewReader(in)
	}
	line, err := b.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", &UsageError{Msg: "aborted: no input"}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
