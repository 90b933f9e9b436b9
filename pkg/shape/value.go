// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shape

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseScalar converts text to the Go value of primitive kind k: bool, int,
// float64 or string. Any non-primitive kind keeps the text as a string.
func ParseScalar(k Kind, text string) (any, error) {
	switch k {
	case Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid boolean", text)
		}
		return b, nil
	case Int:
		i, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", text)
		}
		return i, nil
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid float", text)
		}
		return f, nil
	}
	return text, nil
}

// ParseDefault converts the textual default of a parameter shaped s. Sequence
// defaults are comma separated and become []any.
func ParseDefault(s Shape, text string) (any, error) {
	if s.Origin().IsSequence() {
		if text == "" {
			return []any{}, nil
		}
		prim, _ := s.Primitive()
		parts := strings.Split(text, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			v, err := ParseScalar(prim, strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	if s.Kind() == Literal {
		return matchLiteral(s.values, text)
	}
	if s.Kind() == Optional {
		in, _ := s.Elem()
		return ParseDefault(in, text)
	}
	prim, _ := s.Primitive()
	return ParseScalar(prim, text)
}

func matchLiteral(values []any, text string) (any, error) {
	for _, v := range values {
		if fmt.Sprint(v) == text {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%q is not one of %v", text, values)
}
