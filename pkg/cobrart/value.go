// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/pflag"
	"github.com/yeetrun/sigcli/pkg/param"
)

// flagValue collects raw command-line text for one option. Conversion
// happens at resolve time so every value source is checked the same way.
type flagValue struct {
	opt   *Option
	raw   []string
	count int
	// ownsHelp marks a user option spelled --help. cobra reads that flag
	// as a bool to decide whether to print help; it must always say no.
	ownsHelp bool
}

const helpFlag = "help"

var _ pflag.Value = (*flagValue)(nil)

func (v *flagValue) String() string {
	switch {
	case v.ownsHelp:
		return "false"
	case v.opt.args.Count:
		return strconv.Itoa(v.count)
	case len(v.raw) > 0:
		return strings.Join(v.raw, ",")
	case v.opt.args.Default != nil:
		return formatValue(v.opt.args.Default)
	}
	return ""
}

func (v *flagValue) Set(s string) error {
	switch {
	case v.opt.args.Count:
		v.count++
	case v.opt.args.Multiple:
		v.raw = append(v.raw, s)
	default:
		v.raw = []string{s}
	}
	return nil
}

func (v *flagValue) Type() string {
	switch {
	case v.ownsHelp:
		return "bool"
	case v.opt.args.Count:
		return "count"
	case v.opt.args.IsFlag:
		return "bool"
	case len(v.opt.args.Choices) > 0:
		return "choice"
	}
	switch v.opt.args.Type {
	case param.TypeInt:
		return "int"
	case param.TypeFloat:
		return "float"
	case param.TypeBool:
		return "bool"
	}
	return "string"
}

func (v *flagValue) addTo(fs *pflag.FlagSet) *pflag.Flag {
	f := fs.VarPF(v, v.opt.long, v.opt.short, v.opt.args.Help)
	switch {
	case v.opt.args.Count:
		f.NoOptDefVal = "+1"
	case v.opt.args.IsFlag:
		f.NoOptDefVal = "true"
		// A flag that is on by default turns off when given.
		if on, _ := v.opt.args.Default.(bool); on && v.opt.args.FlagValue == nil {
			f.NoOptDefVal = "false"
		}
	}
	f.Hidden = v.opt.args.Hidden
	return f
}

// coerce converts raw text to the parameter's type, checking it against the
// closed choice set when there is one.
func coerce(t param.Type, choices []any, raw string) (any, error) {
	if len(choices) > 0 {
		for _, c := range choices {
			if fmt.Sprint(c) == raw {
				return c, nil
			}
		}
		msg := fmt.Sprintf("%q is not one of %s", raw, strings.Join(choiceStrings(choices), ", "))
		if s := suggest(raw, choiceStrings(choices)); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return nil, &UsageError{Value: raw, Msg: msg}
	}
	switch t {
	case param.TypeBool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, &UsageError{Value: raw, Msg: fmt.Sprintf("%q is not a valid boolean", raw), Err: err}
		}
		return b, nil
	case param.TypeInt:
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &UsageError{Value: raw, Msg: fmt.Sprintf("%q is not a valid integer", raw), Err: err}
		}
		return i, nil
	case param.TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &UsageError{Value: raw, Msg: fmt.Sprintf("%q is not a valid float", raw), Err: err}
		}
		return f, nil
	}
	return raw, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// suggest returns the closest candidate to s, or "".
func suggest(s string, candidates []string) string {
	ranks := fuzzy.RankFindFold(s, candidates)
	if len(ranks) == 0 {
		// Try the other way around for values longer than the choice.
		for _, c := range candidates {
			if fuzzy.MatchFold(c, s) {
				return c
			}
		}
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func choiceStrings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}
