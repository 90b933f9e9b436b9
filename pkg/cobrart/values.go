// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrart

import "fmt"

// Values holds resolved parameter values keyed by binding key.
type Values map[string]any

// Get returns the value for key and whether it is present.
func (v Values) Get(key string) (any, bool) {
	x, ok := v[key]
	return x, ok
}

// String returns the value for key formatted as text, or "" when it is absent
// or nil.
func (v Values) String(key string) string {
	x, ok := v[key]
	if !ok || x == nil {
		return ""
	}
	if s, ok := x.(string); ok {
		return s
	}
	return fmt.Sprint(x)
}

func (v Values) Int(key string) int {
	i, _ := v[key].(int)
	return i
}

func (v Values) Float(key string) float64 {
	switch x := v[key].(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return 0
}

func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// List returns a repeatable or unlimited parameter's values.
func (v Values) List(key string) []any {
	l, _ := v[key].([]any)
	return l
}

// Strings is List with each element formatted as text.
func (v Values) Strings(key string) []string {
	l := v.List(key)
	if l == nil {
		return nil
	}
	out := make([]string, len(l))
	for i, x := range l {
		out[i] = fmt.Sprint(x)
	}
	return out
}
