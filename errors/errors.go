// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package errors constructs errors that remember where they were created.
//
// Use this package instead of the standard errors.New and fmt.Errorf so that
// build and runner failures can be logged with the call sites that produced
// them:
//
//	errors.New("gulp is not installed")
//	errors.Errorf("unknown runtime config %q", name)
//	errors.Wrap(err, "failed to start fixture server")
//	errors.Wrapf(err, "failed to run %s", cmdline)
//
// Formatting an error with "%+v" prints the whole chain with call sites.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// chainError is an error message annotated with its origin and an optional cause.
type chainError struct {
	msg   string
	at    trace
	cause error
}

func (e *chainError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap returns the error wrapped by e, or nil.
func (e *chainError) Unwrap() error {
	return e.cause
}

// Format implements fmt.Formatter. The "%+v" verb prints the chain with call sites.
func (e *chainError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, describeChain(e))
		return
	}
	io.WriteString(s, e.Error())
}

func describeChain(err error) string {
	var parts []string
	for err != nil {
		ce, ok := err.(*chainError)
		if !ok {
			parts = append(parts, err.Error()+"\n\tat ???")
			break
		}
		parts = append(parts, ce.msg+"\n"+ce.at.String())
		err = ce.cause
	}
	return strings.Join(parts, "\n")
}

// New returns an error with msg, recording the caller.
func New(msg string) error {
	return &chainError{msg: msg, at: capture(1)}
}

// Errorf is like New but formats its message with fmt.Sprintf.
func Errorf(format string, args ...interface{}) error {
	return &chainError{msg: fmt.Sprintf(format, args...), at: capture(1)}
}

// Wrap returns an error with msg that wraps cause. If cause is nil, Wrap
// behaves like New.
func Wrap(cause error, msg string) error {
	return &chainError{msg: msg, at: capture(1), cause: cause}
}

// Wrapf is like Wrap but formats its message with fmt.Sprintf.
func Wrapf(cause error, format string, args ...interface{}) error {
	return &chainError{msg: fmt.Sprintf(format, args...), at: capture(1), cause: cause}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }
