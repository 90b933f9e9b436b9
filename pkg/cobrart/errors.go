// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrart

import (
	"errors"
	"fmt"
)

// ErrStop may be returned by a parameter callback to end the invocation
// successfully without running the command, e.g. after printing a version.
var ErrStop = errors.New("stop")

// UsageError is an invocation-time failure caused by the user's input. Errors
// about a specific Value read "invalid value for Param: Msg"; others are Msg.
type UsageError struct {
	Param string // parameter as shown to the user, e.g. "--level" or "NAME"
	Value string // offending raw value, if any
	Msg   string
	Err   error
}

func (e *UsageError) Error() string {
	if e.Param == "" || e.Value == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid value for %s: %s", e.Param, e.Msg)
}

func (e *UsageError) Unwrap() error { return e.Err }

// withParam fills in the parameter of a UsageError produced without one.
func withParam(err error, display string) error {
	var ue *UsageError
	if errors.As(err, &ue) && ue.Param == "" {
		c := *ue
		c.Param = display
		return &c
	}
	return err
}

func missing(kind, display string) error {
	return &UsageError{Param: display, Msg: fmt.Sprintf("missing %s %s", kind, display)}
}

// ReservedError reports an option spelled like a flag its command keeps for
// itself.
type ReservedError struct {
	Param string // binding key of the offending parameter
	Name  string // the reserved spelling, e.g. "--help"
}

func (e *ReservedError) Error() string {
	return fmt.Sprintf("option %s is reserved", e.Name)
}
