// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/yeetrun/sigcli/pkg/infer"
	"github.com/yeetrun/sigcli/pkg/manifest"
	"github.com/yeetrun/sigcli/pkg/tui"
	"gopkg.in/yaml.v3"
	"tailscale.com/types/logger"
)

const opsManifest = `
version = "1"
name = "ops"

[[commands]]
name = "deploy"
help = "Deploy an application."

[[commands.params]]
name = "app"
kind = "positional_only"
type = "string"

[[commands.params]]
name = "replicas"
type = "int"
default = 2

[[commands.params]]
name = "level"
kind = "keyword_only"
type = 'literal("low", "high")'
default = "low"

[[commands.params]]
name = "hosts"
kind = "var_positional"
type = "string"

[[commands]]
name = "status"

[[commands.params]]
name = "verbose"
type = "bool"
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// captureStdout points the tool's output at a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := global
	global.stdout = &buf
	global.stderr = &buf
	global.noColor = true
	global.logf = logger.Discard
	t.Cleanup(func() { global = old })
	return &buf
}

func TestSplitLeading(t *testing.T) {
	tests := []struct {
		args       []string
		valued     []string
		flags, rst []string
	}{
		{[]string{"-v", "run", "--x"}, nil, []string{"-v"}, []string{"run", "--x"}},
		{[]string{"--manifest", "a.toml", "deploy", "-v"}, []string{"manifest"}, []string{"--manifest", "a.toml"}, []string{"deploy", "-v"}},
		{[]string{"--manifest=a.toml", "deploy"}, []string{"manifest"}, []string{"--manifest=a.toml"}, []string{"deploy"}},
		{[]string{"-m", "a.toml", "--", "--odd"}, []string{"m"}, []string{"-m", "a.toml"}, []string{"--odd"}},
		{[]string{"deploy"}, nil, []string{}, []string{"deploy"}},
		{nil, nil, []string{}, []string{}},
	}
	for _, tt := range tests {
		flags, rest := splitLeading(tt.args, tt.valued...)
		if diff := cmp.Diff(tt.flags, flags, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("splitLeading(%q) flags (-want +got):\n%s", tt.args, diff)
		}
		if diff := cmp.Diff(tt.rst, rest, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("splitLeading(%q) rest (-want +got):\n%s", tt.args, diff)
		}
	}
}

func TestParseGlobalFlags(t *testing.T) {
	gf, rest, err := parseGlobalFlags([]string{"--verbose", "run", "deploy", "--no-color"})
	if err != nil {
		t.Fatal(err)
	}
	if !gf.Verbose || gf.NoColor {
		t.Errorf("flags = %+v, want only Verbose", gf)
	}
	if diff := cmp.Diff([]string{"run", "deploy", "--no-color"}, rest); diff != "" {
		t.Errorf("rest (-want +got):\n%s", diff)
	}
}

func TestDescribeManifest(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, "ops.toml", opsManifest))
	if err != nil {
		t.Fatal(err)
	}
	infos, err := describeManifest(m, []string{"deploy"}, infer.New(newRuntime(), t.Logf))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, in := range infos {
		got = append(got, in.Name+" "+in.Param+" "+strings.Join(in.Decls, ","))
	}
	want := []string{
		"app argument app",
		"replicas option --replicas",
		"level option --level",
		"hosts option --hosts",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("described params (-want +got):\n%s", diff)
	}
	if !infos[3].Multiple || !infos[0].Required || infos[1].Required {
		t.Errorf("unexpected flags: %+v", infos)
	}
	if diff := cmp.Diff([]any{"low", "high"}, infos[2].Choices); diff != "" {
		t.Errorf("level choices (-want +got):\n%s", diff)
	}

	if _, err := describeManifest(m, []string{"nope"}, infer.New(newRuntime(), nil)); err == nil {
		t.Error("unknown command accepted")
	}
}

func TestRenderInfos(t *testing.T) {
	infos := []paramInfo{
		{Command: "deploy", Name: "app", Kind: "positional_only", Type: "string", Param: "argument", Decls: []string{"app"}, ValueType: "text", Required: true},
		{Command: "deploy", Name: "hosts", Kind: "var_positional", Type: "string", Param: "option", Decls: []string{"--hosts"}, ValueType: "text", Multiple: true},
	}

	var buf bytes.Buffer
	if err := renderInfos(&buf, "", infos); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "COMMAND") {
		t.Fatalf("table:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "option --hosts (repeatable)") {
		t.Errorf("hosts row = %q", lines[2])
	}

	buf.Reset()
	if err := renderInfos(&buf, "json", infos); err != nil {
		t.Fatal(err)
	}
	var fromJSON []paramInfo
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(infos, fromJSON); diff != "" {
		t.Errorf("json (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := renderInfos(&buf, "yaml", infos); err != nil {
		t.Fatal(err)
	}
	var fromYAML []paramInfo
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 2 || fromYAML[1].Name != "hosts" || !fromYAML[1].Multiple {
		t.Errorf("yaml round trip = %+v", fromYAML)
	}

	if err := renderInfos(&buf, "xml", infos); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestCheckAll(t *testing.T) {
	captureStdout(t)
	good := writeManifest(t, "ops.toml", opsManifest)
	bad := writeManifest(t, "bad.toml", "[[commands]]\nname = \"x\"\n[[commands.params]]\nname = \"p\"\n")
	var calls atomic.Int32
	results, err := checkAll(context.Background(), []string{good, bad, "/does/not/exist.toml"}, 2, func() { calls.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 || calls.Load() != 3 {
		t.Fatalf("results = %d, progress calls = %d", len(results), calls.Load())
	}
	if r := results[0]; r.Err != nil || r.Commands != 2 || r.Params != 5 {
		t.Errorf("good result = %+v", r)
	}
	if results[1].Err == nil || results[2].Err == nil {
		t.Errorf("bad results = %+v", results[1:])
	}

	var buf bytes.Buffer
	err = reportCheck(&buf, tui.Colorizer{}, results)
	if err == nil || !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("reportCheck error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ok   "+good) || strings.Count(out, "FAIL") != 2 {
		t.Errorf("report:\n%s", out)
	}
}

func TestHandleRun(t *testing.T) {
	out := captureStdout(t)
	path := writeManifest(t, "ops.toml", opsManifest)

	err := handleRun(context.Background(), []string{"run", "--manifest", path, "deploy", "web", "--hosts", "a", "--hosts", "b", "--level", "high"})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output %q: %v", out.String(), err)
	}
	want := map[string]any{
		"app":      "web",
		"replicas": 2.0,
		"level":    "high",
		"hosts":    []any{"a", "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}

	out.Reset()
	if err := handleRun(context.Background(), []string{"run", "-m", path, "deploy", "--help"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Usage: ops deploy [OPTIONS] APP") {
		t.Errorf("help:\n%s", out.String())
	}

	if err := handleRun(context.Background(), []string{"run", "-m", path, "deploy", "web", "--level", "max"}); err == nil {
		t.Error("rejected choice accepted")
	}
	if err := handleRun(context.Background(), []string{"run", "-m", path}); err == nil {
		t.Error("missing command name accepted")
	}
	if err := handleRun(context.Background(), []string{"run", "--bogus", "deploy"}); err == nil {
		t.Error("unknown leading flag accepted")
	}
}
