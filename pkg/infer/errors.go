// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package infer

import (
	"errors"
	"fmt"

	"github.com/yeetrun/sigcli/pkg/sig"
)

var (
	// ErrMissingAnnotation is returned for a parameter without a shape.
	ErrMissingAnnotation = errors.New("missing type annotation")
	// ErrUnsupportedKind is returned for parameter kinds inference cannot
	// express, notably var_keyword.
	ErrUnsupportedKind = errors.New("unsupported parameter kind")
	// ErrNoDeclaration is returned when a parameter has no name to derive a
	// declaration from.
	ErrNoDeclaration = errors.New("no parameter declaration")
	// ErrNoBuilder is returned for an override descriptor that was not made
	// with param.NewArgument or param.NewOption.
	ErrNoBuilder = errors.New("override descriptor has no builder")
)

// ConfigError is a decoration-time failure for one parameter. The command
// cannot be built.
type ConfigError struct {
	Param string   // parameter name, empty when the failure is not about one
	Kind  sig.Kind // parameter kind, zero when unknown
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Param == "":
		return fmt.Sprintf("configuration error: %v", e.Err)
	case errors.Is(e.Err, ErrUnsupportedKind):
		return fmt.Sprintf("parameter %q: %v %s", e.Param, e.Err, e.Kind)
	}
	return fmt.Sprintf("parameter %q: %v", e.Param, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
