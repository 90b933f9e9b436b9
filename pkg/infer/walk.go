// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package infer

import (
	"github.com/yeetrun/sigcli/pkg/param"
	"github.com/yeetrun/sigcli/pkg/sig"
)

// ParamList accumulates realised parameters between walking a signature and
// assembling a command. The zero value is an empty list.
type ParamList struct {
	params []param.Native
}

// Prepend inserts n at the front.
func (l *ParamList) Prepend(n param.Native) {
	l.params = append([]param.Native{n}, l.params...)
}

// Params returns a copy of the list in order.
func (l *ParamList) Params() []param.Native {
	return append([]param.Native(nil), l.params...)
}

func (l *ParamList) Len() int { return len(l.params) }

// Take returns the list's params and clears it.
func (l *ParamList) Take() []param.Native {
	out := l.params
	l.params = nil
	return out
}

// Walk infers every parameter of s, last to first, prepending each to list so
// list ends up in declaration order. Walking the same signature into the same
// list twice duplicates its parameters.
//
// The first failure aborts the walk and leaves list unchanged.
func (e *Engine) Walk(s *sig.Signature, list *ParamList) error {
	if err := s.Validate(); err != nil {
		return &ConfigError{Err: err}
	}
	realised := make([]param.Native, 0, len(s.Params))
	for i := len(s.Params) - 1; i >= 0; i-- {
		n, err := e.Infer(s.Params[i])
		if err != nil {
			return err
		}
		realised = append(realised, n)
	}
	for _, n := range realised {
		list.Prepend(n)
	}
	e.logf("infer: walked %d parameters", len(realised))
	return nil
}
