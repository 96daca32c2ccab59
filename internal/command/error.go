// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package command holds code shared by the command-line entry points:
// flag values, exit-status errors and signal handling.
package command

import (
	"fmt"

	"go.amp.dev/buildsystem/errors"
)

// StatusError is an error carrying the exit status the process should
// terminate with.
type StatusError struct {
	msg    string
	status int
	cause  error
}

func (e *StatusError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s (status %d)", e.msg, e.status)
	}
	return fmt.Sprintf("%s (status %d): %v", e.msg, e.status, e.cause)
}

// Unwrap returns the underlying error, if any.
func (e *StatusError) Unwrap() error { return e.cause }

// Status returns the exit status.
func (e *StatusError) Status() int { return e.status }

// NewStatusErrorf returns a StatusError with status and a formatted message.
func NewStatusErrorf(status int, format string, args ...interface{}) *StatusError {
	return &StatusError{msg: fmt.Sprintf(format, args...), status: status}
}

// exitCoder is implemented by *exec.ExitError and *execx.ExitError.
type exitCoder interface {
	ExitCode() int
}

// WrapStatus returns a StatusError for a failed external command. If err
// came from a process exiting with a non-zero code, that code becomes the
// status; otherwise the status is 1.
func WrapStatus(err error, format string, args ...interface{}) *StatusError {
	status := 1
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() > 0 {
		status = ec.ExitCode()
	}
	return &StatusError{msg: fmt.Sprintf(format, args...), status: status, cause: err}
}

// StatusOf returns the exit status to use for err: 0 for nil, the status of
// the first StatusError in its chain, or 1.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.status
	}
	return 1
}
