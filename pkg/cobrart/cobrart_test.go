// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrart

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"
	"github.com/yeetrun/sigcli/pkg/infer"
	"github.com/yeetrun/sigcli/pkg/param"
	"github.com/yeetrun/sigcli/pkg/shape"
	"github.com/yeetrun/sigcli/pkg/sig"
)

func testRuntime(env map[string]string, stdin string) *Runtime {
	return &Runtime{
		LookupEnv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
		Stdin:  strings.NewReader(stdin),
		Stderr: io.Discard,
	}
}

// run binds params to a fresh command and executes it with args.
func run(t *testing.T, rt *Runtime, params []param.Native, args ...string) (Values, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
	b, err := rt.Bind(cmd, params)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	var got Values
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := b.Resolve(cmd.Context(), args)
		got = v
		return err
	}
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err = cmd.ExecuteContext(context.Background())
	return got, err
}

func walk(t *testing.T, rt *Runtime, s *sig.Signature) []param.Native {
	t.Helper()
	var list infer.ParamList
	if err := infer.New(rt, t.Logf).Walk(s, &list); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return list.Take()
}

func deploySig() *sig.Signature {
	return sig.New().
		Positional("src", shape.OfString()).
		Param("count", shape.OfInt(), sig.Default(3)).
		Keyword("level", shape.LiteralOf("low", "high")).
		Variadic("args", shape.OfString()).
		Param("verbose", shape.OfBool()).
		Keyword("dry_run", shape.OfBool())
}

func TestResolveInferred(t *testing.T) {
	rt := testRuntime(nil, "")
	got, err := run(t, rt, walk(t, rt, deploySig()),
		"a.txt", "--count", "5", "--level", "high", "--args", "x", "--args", "y", "--verbose")
	if err != nil {
		t.Fatal(err)
	}
	want := Values{
		"src":     "a.txt",
		"count":   5,
		"level":   "high",
		"args":    []any{"x", "y"},
		"verbose": true,
		"dry_run": false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDefaults(t *testing.T) {
	rt := testRuntime(nil, "")
	got, err := run(t, rt, walk(t, rt, deploySig()), "a.txt", "--level=low", "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	want := Values{
		"src":     "a.txt",
		"count":   3,
		"level":   "low",
		"args":    []any{},
		"verbose": false,
		"dry_run": true,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}

func TestChoiceRejected(t *testing.T) {
	tests := []struct {
		args []string
		env  map[string]string
		want string
	}{
		{
			args: []string{"a", "--level", "medium"},
			want: `invalid value for --level: "medium" is not one of low, high`,
		},
		{
			args: []string{"a", "--level", "hgh"},
			want: `invalid value for --level: "hgh" is not one of low, high (did you mean "high"?)`,
		},
	}
	for _, tt := range tests {
		rt := testRuntime(tt.env, "")
		_, err := run(t, rt, walk(t, rt, deploySig()), tt.args...)
		var ue *UsageError
		if !errors.As(err, &ue) {
			t.Fatalf("%q: err = %v, want *UsageError", tt.args, err)
		}
		if err.Error() != tt.want {
			t.Errorf("%q: err = %q, want %q", tt.args, err, tt.want)
		}
		if ue.Param != "--level" {
			t.Errorf("Param = %q, want --level", ue.Param)
		}
	}
}

func TestChoiceRejectedFromEnv(t *testing.T) {
	rt := testRuntime(map[string]string{"LEVEL": "max"}, "")
	s := sig.New().Keyword("level", shape.LiteralOf("low", "high"), sig.EnvVar("LEVEL"))
	if _, err := run(t, rt, walk(t, rt, s)); err == nil || !strings.Contains(err.Error(), `"max" is not one of`) {
		t.Errorf("err = %v, want choice rejection", err)
	}
}

func TestMissingRequired(t *testing.T) {
	rt := testRuntime(nil, "")
	params := walk(t, rt, deploySig())

	_, err := run(t, rt, params, "--level", "low")
	if err == nil || err.Error() != "missing argument SRC" {
		t.Errorf("err = %v, want missing argument SRC", err)
	}

	rt = testRuntime(nil, "")
	_, err = run(t, rt, walk(t, rt, deploySig()), "a.txt")
	if err == nil || err.Error() != "missing option --level" {
		t.Errorf("err = %v, want missing option --level", err)
	}
}

func TestExtraArguments(t *testing.T) {
	rt := testRuntime(nil, "")
	_, err := run(t, rt, walk(t, rt, deploySig()), "a", "b", "--level", "low")
	if err == nil || err.Error() != "got unexpected extra argument(s) (b)" {
		t.Errorf("err = %v", err)
	}
}

func TestBadNumber(t *testing.T) {
	rt := testRuntime(nil, "")
	_, err := run(t, rt, walk(t, rt, deploySig()), "a", "--level", "low", "--count", "many")
	if err == nil || err.Error() != `invalid value for --count: "many" is not a valid integer` {
		t.Errorf("err = %v", err)
	}
}

func TestEnvResolution(t *testing.T) {
	env := map[string]string{
		"COUNT":     "7",
		"APP_TOKEN": "secret",
		"APP_OTHER": "ignored",
		"FILES":     "a b  c",
	}
	mk := func(rt *Runtime) []param.Native {
		var out []param.Native
		for _, d := range []*param.Descriptor{
			param.NewOption(param.Decls("--count"), param.WithType(param.TypeInt), param.EnvVar("COUNT"), param.Default(1)),
			param.NewOption(param.Decls("--token"), param.AllowFromAutoEnv(true)),
			param.NewOption(param.Decls("--other")),
			param.NewArgument(param.Decls("files"), param.Nargs(param.Unlimited), param.EnvVar("FILES")),
		} {
			n, err := param.Build(rt, d)
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, n)
		}
		return out
	}

	rt := testRuntime(env, "")
	rt.AutoEnvPrefix = "APP"
	got, err := run(t, rt, mk(rt))
	if err != nil {
		t.Fatal(err)
	}
	want := Values{"count": 7, "token": "secret", "other": nil, "files": []any{"a", "b", "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}

	// The command line wins over the environment.
	rt = testRuntime(env, "")
	got, err = run(t, rt, mk(rt), "--count", "2", "x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Int("count") != 2 || !cmp.Equal(got.Strings("files"), []string{"x"}) {
		t.Errorf("got %v", got)
	}
	if got.String("token") != "" {
		t.Errorf("token read without an auto env prefix: %v", got["token"])
	}
}

func TestPrompt(t *testing.T) {
	var stderr bytes.Buffer
	rt := testRuntime(nil, "bob\n")
	rt.Stderr = &stderr
	n, err := rt.NewOption(param.OptionArgs{Common: param.Common{Decls: []string{"--name"}}, Prompt: "Your name", HideInput: true})
	if err != nil {
		t.Fatal(err)
	}
	got, err := run(t, rt, []param.Native{n})
	if err != nil {
		t.Fatal(err)
	}
	if got.String("name") != "bob" {
		t.Errorf("name = %q, want bob", got.String("name"))
	}
	if stderr.String() != "Your name: " {
		t.Errorf("prompt = %q", stderr.String())
	}

	// Empty input takes the default.
	rt = testRuntime(nil, "\n")
	n, _ = rt.NewOption(param.OptionArgs{Common: param.Common{Decls: []string{"--name"}, Default: "anon"}, Prompt: "Your name"})
	if got, err := run(t, rt, []param.Native{n}); err != nil || got.String("name") != "anon" {
		t.Errorf("got %v, %v; want anon", got, err)
	}

	// Confirmation must match.
	rt = testRuntime(nil, "pw\npw\n")
	n, _ = rt.NewOption(param.OptionArgs{Common: param.Common{Decls: []string{"--password"}}, Prompt: "Password", ConfirmationPrompt: true})
	if got, err := run(t, rt, []param.Native{n}); err != nil || got.String("password") != "pw" {
		t.Errorf("got %v, %v; want pw", got, err)
	}
	rt = testRuntime(nil, "pw\nwp\n")
	n, _ = rt.NewOption(param.OptionArgs{Common: param.Common{Decls: []string{"--password"}}, Prompt: "Password", ConfirmationPrompt: true})
	if _, err := run(t, rt, []param.Native{n}); err == nil {
		t.Error("mismatched confirmation accepted")
	}

	// No input at all aborts.
	rt = testRuntime(nil, "")
	n, _ = rt.NewOption(param.OptionArgs{Common: param.Common{Decls: []string{"--name"}}, Prompt: "Your name"})
	if _, err := run(t, rt, []param.Native{n}); err == nil {
		t.Error("prompt without input succeeded")
	}
}

func TestCallbacks(t *testing.T) {
	rt := testRuntime(nil, "")
	upper := func(_ context.Context, key string, v any) (any, error) {
		return strings.ToUpper(v.(string)), nil
	}
	reject := func(_ context.Context, key string, v any) (any, error) {
		if v == "bad" {
			return nil, errors.New("not allowed")
		}
		return v, nil
	}
	versionShown := false
	version := func(_ context.Context, key string, v any) (any, error) {
		if v == true {
			versionShown = true
			return nil, ErrStop
		}
		return v, nil
	}
	build := func() []param.Native {
		var out []param.Native
		for _, d := range []*param.Descriptor{
			param.NewArgument(param.Decls("name"), param.Required(true), param.WithCallback(upper)),
			param.NewOption(param.Decls("--mode"), param.WithCallback(reject)),
			param.NewOption(param.Decls("--version"), param.Flag(true), param.Eager(true), param.WithCallback(version)),
		} {
			n, err := param.Build(rt, d)
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, n)
		}
		return out
	}

	got, err := run(t, rt, build(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	if got.String("name") != "BOB" {
		t.Errorf("name = %q, want BOB", got.String("name"))
	}

	_, err = run(t, rt, build(), "bob", "--mode", "bad")
	if err == nil || err.Error() != "--mode: not allowed" {
		t.Errorf("err = %v, want --mode: not allowed", err)
	}

	// The eager flag resolves before the missing argument is noticed.
	_, err = run(t, rt, build(), "--version")
	if !errors.Is(err, ErrStop) || !versionShown {
		t.Errorf("err = %v, versionShown = %v; want ErrStop", err, versionShown)
	}
}

func TestHiddenArgumentValue(t *testing.T) {
	rt := testRuntime(nil, "")
	n, err := param.Build(rt, param.NewArgument(param.Decls("token"), param.ExposeValue(false)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := run(t, rt, []param.Native{n}, "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Get("token"); ok {
		t.Errorf("unexposed value present: %v", got)
	}
}

func TestCountAndFlagValue(t *testing.T) {
	rt := testRuntime(nil, "")
	mk := func() []param.Native {
		v, err := param.Build(rt, param.NewOption(param.Decls("-v", "--verbose"), param.Count(true)))
		if err != nil {
			t.Fatal(err)
		}
		u, err := param.Build(rt, param.NewOption(param.Decls("--upper"), param.Flag(true), param.FlagValue("upper"), param.Default("lower")))
		if err != nil {
			t.Fatal(err)
		}
		return []param.Native{v, u}
	}

	got, err := run(t, rt, mk(), "-vvv", "--upper")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Values{"verbose": 3, "upper": "upper"}, got); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}

	got, err = run(t, rt, mk())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Values{"verbose": 0, "upper": "lower"}, got); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
}

func TestFlagDefaultTrue(t *testing.T) {
	rt := testRuntime(nil, "")
	s := sig.New().Param("verbose", shape.OfBool(), sig.Default(true))
	for _, tt := range []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"--verbose"}, false},
		{[]string{"--verbose=true"}, true},
		{[]string{"--verbose=false"}, false},
	} {
		got, err := run(t, rt, walk(t, rt, s), tt.args...)
		if err != nil {
			t.Fatalf("%q: %v", tt.args, err)
		}
		if got.Bool("verbose") != tt.want {
			t.Errorf("%q: verbose = %v, want %v", tt.args, got["verbose"], tt.want)
		}
	}
}

func TestAutoEnvUsesParamName(t *testing.T) {
	env := map[string]string{"APP_LVL": "from-lvl", "APP_LEVEL": "from-level"}
	rt := testRuntime(env, "")
	rt.AutoEnvPrefix = "APP"
	s := sig.New().Param("lvl", shape.OfString(),
		sig.Default(param.NewOption(param.Decls("-l", "--level"), param.AllowFromAutoEnv(true))))
	got, err := run(t, rt, walk(t, rt, s))
	if err != nil {
		t.Fatal(err)
	}
	if got.String("lvl") != "from-lvl" {
		t.Errorf("lvl = %v, want from-lvl", got["lvl"])
	}
}

func TestBindReserved(t *testing.T) {
	rt := testRuntime(nil, "")
	h, err := param.Build(rt, param.NewOption(param.Decls("--help"), param.Flag(true)))
	if err != nil {
		t.Fatal(err)
	}
	h.SetBindingKey("show_help")
	_, err = rt.Bind(&cobra.Command{Use: "t"}, []param.Native{h}, "--help", "-h")
	var re *ReservedError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *ReservedError", err)
	}
	if re.Param != "show_help" || re.Name != "--help" {
		t.Errorf("ReservedError = %+v", re)
	}
	if _, err := rt.Bind(&cobra.Command{Use: "t"}, []param.Native{h}); err != nil {
		t.Errorf("Bind without reserved names: %v", err)
	}
}

func TestBindErrors(t *testing.T) {
	rt := testRuntime(nil, "")
	a1, _ := param.Build(rt, param.NewArgument(param.Decls("a"), param.Nargs(param.Unlimited)))
	a2, _ := param.Build(rt, param.NewArgument(param.Decls("b"), param.Nargs(param.Unlimited)))
	o1, _ := param.Build(rt, param.NewOption(param.Decls("-x", "--one")))
	o2, _ := param.Build(rt, param.NewOption(param.Decls("-x", "--two")))

	tests := [][]param.Native{
		{a1, a2},
		{o1, o2},
		{o1, o1},
		{&foreign{}},
	}
	for i, params := range tests {
		if _, err := rt.Bind(&cobra.Command{Use: "t"}, params); err == nil {
			t.Errorf("case %d: Bind succeeded", i)
		}
	}
}

type foreign struct{ key string }

func (f *foreign) BindingKey() string       { return f.key }
func (f *foreign) SetBindingKey(key string) { f.key = key }

func TestNewErrors(t *testing.T) {
	rt := testRuntime(nil, "")
	if _, err := rt.NewArgument(param.ArgumentArgs{Common: param.Common{Decls: []string{"--a"}}}); err == nil {
		t.Error("dashed argument accepted")
	}
	if _, err := rt.NewArgument(param.ArgumentArgs{Common: param.Common{Decls: []string{"a", "b"}}}); err == nil {
		t.Error("two argument names accepted")
	}
	for _, decls := range [][]string{{}, {"name"}, {"-long"}, {"--"}, {"--a/--b"}} {
		if _, err := rt.NewOption(param.OptionArgs{Common: param.Common{Decls: decls}}); err == nil {
			t.Errorf("NewOption(%q) succeeded", decls)
		}
	}
	if _, err := rt.NewOption(param.OptionArgs{Common: param.Common{Decls: []string{"--f"}}, IsFlag: true, Multiple: true}); err == nil {
		t.Error("repeatable flag accepted")
	}
	n, err := rt.NewOption(param.OptionArgs{Common: param.Common{Decls: []string{"-q"}}})
	if err != nil {
		t.Fatal(err)
	}
	if o := n.(*Option); o.Name() != "q" || o.Shorthand() != "" {
		t.Errorf("-q only: Name=%q Shorthand=%q", o.Name(), o.Shorthand())
	}
}

func TestUnpackArgs(t *testing.T) {
	tests := []struct {
		args  []string
		nargs []int
		want  [][]string
		rest  []string
	}{
		{[]string{"a", "b", "c", "d"}, []int{1, -1, 1}, [][]string{{"a"}, {"b", "c"}, {"d"}}, nil},
		{[]string{"a", "b", "c"}, []int{-1, 2}, [][]string{{"a"}, {"b", "c"}}, nil},
		{[]string{"a"}, []int{2}, [][]string{{"a"}}, nil},
		{[]string{"a", "b"}, []int{1}, [][]string{{"a"}}, []string{"b"}},
		{nil, []int{-1}, [][]string{nil}, nil},
		{[]string{"a"}, []int{1, 1}, [][]string{{"a"}, nil}, nil},
		{[]string{"a", "b"}, nil, [][]string{}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		got, rest := unpackArgs(tt.args, tt.nargs)
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("unpackArgs(%q, %v) groups (-want +got):\n%s", tt.args, tt.nargs, diff)
		}
		if diff := cmp.Diff(tt.rest, rest, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("unpackArgs(%q, %v) rest (-want +got):\n%s", tt.args, tt.nargs, diff)
		}
	}
}

func TestHelpRecord(t *testing.T) {
	rt := testRuntime(nil, "")
	n, err := param.Build(rt, param.NewOption(
		param.Decls("-l", "--level"),
		param.Choices("low", "high"),
		param.Default("low"),
		param.ShowDefault(true),
		param.Help("Level"),
		param.EnvVar("LEVEL"),
		param.ShowEnvVar(true),
	))
	if err != nil {
		t.Fatal(err)
	}
	decl, help := n.(*Option).HelpRecord()
	if decl != "-l, --level [low|high]" || help != "Level  [env var: LEVEL; default: low]" {
		t.Errorf("HelpRecord = %q, %q", decl, help)
	}

	n, _ = param.Build(rt, param.NewOption(param.Decls("--count"), param.WithType(param.TypeInt), param.Required(true)))
	if decl, help := n.(*Option).HelpRecord(); decl != "--count INTEGER" || help != "[required]" {
		t.Errorf("HelpRecord = %q, %q", decl, help)
	}

	n, _ = param.Build(rt, param.NewArgument(param.Decls("files"), param.Nargs(param.Unlimited)))
	if decl, _ := n.(*Argument).HelpRecord(); decl != "[FILES...]" {
		t.Errorf("argument decl = %q, want [FILES...]", decl)
	}
}

func TestCompletion(t *testing.T) {
	rt := testRuntime(nil, "")
	level, _ := param.Build(rt, param.NewOption(param.Decls("--level"), param.Choices("low", "high", "huge")))
	host, _ := param.Build(rt, param.NewArgument(param.Decls("host"), param.WithCompletion(
		func(_ context.Context, args []string, toComplete string) []string {
			return []string{toComplete + "-1", toComplete + "-2"}
		})))
	cmd := &cobra.Command{Use: "t"}
	if _, err := rt.Bind(cmd, []param.Native{level, host}); err != nil {
		t.Fatal(err)
	}

	f, ok := cmd.GetFlagCompletionFunc("level")
	if !ok {
		t.Fatal("no completion registered for --level")
	}
	got, _ := f(cmd, nil, "h")
	if diff := cmp.Diff([]string{"high", "huge"}, got); diff != "" {
		t.Errorf("flag completion (-want +got):\n%s", diff)
	}

	got, _ = cmd.ValidArgsFunction(cmd, nil, "web")
	if diff := cmp.Diff([]string{"web-1", "web-2"}, got); diff != "" {
		t.Errorf("argument completion (-want +got):\n%s", diff)
	}
	if got, _ := cmd.ValidArgsFunction(cmd, []string{"web-1"}, ""); len(got) != 0 {
		t.Errorf("completion past the last argument = %v", got)
	}
}

func TestSuggest(t *testing.T) {
	choices := []string{"staging", "production", "dev"}
	tests := map[string]string{
		"prod":   "production",
		"stg":    "staging",
		"zzz":    "",
		"devvvv": "dev",
	}
	for in, want := range tests {
		if got := suggest(in, choices); got != want {
			t.Errorf("suggest(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReset(t *testing.T) {
	rt := testRuntime(nil, "")
	cmd := &cobra.Command{Use: "test", SilenceUsage: true, SilenceErrors: true}
	b, err := rt.Bind(cmd, walk(t, rt, deploySig()))
	if err != nil {
		t.Fatal(err)
	}
	var got Values
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := b.Resolve(cmd.Context(), args)
		got = v
		return err
	}
	cmd.SetOut(io.Discard)
	exec := func(args ...string) {
		t.Helper()
		cmd.SetArgs(args)
		if err := cmd.ExecuteContext(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	exec("a.txt", "--level", "high", "--count", "9", "--args", "x", "--verbose")
	b.Reset()
	exec("b.txt", "--level", "low", "--args", "y")
	want := Values{
		"src":     "b.txt",
		"count":   3,
		"level":   "low",
		"args":    []any{"y"},
		"verbose": false,
		"dry_run": false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Values after Reset mismatch (-want +got):\n%s", diff)
	}
}
