// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package infer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/sigcli/pkg/param"
	"github.com/yeetrun/sigcli/pkg/shape"
	"github.com/yeetrun/sigcli/pkg/sig"
)

func keys(ns []param.Native) []string {
	var out []string
	for _, n := range ns {
		out = append(out, n.BindingKey())
	}
	return out
}

func TestWalkOrder(t *testing.T) {
	s := sig.New().
		Positional("src", shape.OfString()).
		Param("count", shape.OfInt(), sig.Default(3)).
		Keyword("level", shape.LiteralOf("low", "high")).
		Variadic("args", shape.OfString())

	var list ParamList
	if err := New(&recorder{}, t.Logf).Walk(s, &list); err != nil {
		t.Fatal(err)
	}
	want := []string{"src", "count", "level", "args"}
	if diff := cmp.Diff(want, keys(list.Params())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// Walking again duplicates.
	if err := New(&recorder{}, nil).Walk(s, &list); err != nil {
		t.Fatal(err)
	}
	if list.Len() != 8 {
		t.Errorf("Len after second walk = %d, want 8", list.Len())
	}

	taken := list.Take()
	if len(taken) != 8 || list.Len() != 0 {
		t.Errorf("Take returned %d, left %d", len(taken), list.Len())
	}
}

func TestWalkAbortsWithoutPartialList(t *testing.T) {
	s := sig.New().
		Param("ok", shape.OfInt()).
		Add(sig.Param{Name: "broken", Kind: sig.PositionalOrKeyword}).
		Keyword("also_ok", shape.OfString())

	var list ParamList
	list.Prepend(&native{key: "existing"})
	err := New(&recorder{}, nil).Walk(s, &list)
	if !errors.Is(err, ErrMissingAnnotation) {
		t.Fatalf("err = %v, want ErrMissingAnnotation", err)
	}
	if diff := cmp.Diff([]string{"existing"}, keys(list.Params())); diff != "" {
		t.Errorf("list changed on failure (-want +got):\n%s", diff)
	}
}

func TestWalkInvalidSignature(t *testing.T) {
	s := sig.New().Param("a", shape.OfInt()).Param("a", shape.OfInt())
	var list ParamList
	var ce *ConfigError
	if err := New(&recorder{}, nil).Walk(s, &list); !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

func TestParamListParamsIsCopy(t *testing.T) {
	var list ParamList
	list.Prepend(&native{key: "b"})
	list.Prepend(&native{key: "a"})
	got := list.Params()
	got[0] = &native{key: "z"}
	if diff := cmp.Diff([]string{"a", "b"}, keys(list.Params())); diff != "" {
		t.Errorf("Params mismatch (-want +got):\n%s", diff)
	}
}
