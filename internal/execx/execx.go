// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execx runs the external commands an integration run depends on:
// the gulp build tasks and the browser test driver.
//
// Callers depend on the Runner interface so unit tests can substitute
// execxtest.Runner and inspect the exact command lines issued.
package execx

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"go.amp.dev/buildsystem/shutil"
)

// Command describes one external command.
type Command struct {
	// Name is the executable, looked up in PATH if it has no slash.
	Name string
	// Args are the arguments after Name.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the parent environment.
	Env []string
	// Stdout and Stderr receive the process output. Nil discards it.
	Stdout, Stderr io.Writer
	// NewProcessGroup places the process in its own process group so that
	// it and its descendants can be signalled together.
	NewProcessGroup bool
}

// Argv returns Name followed by Args.
func (c *Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String returns the shell-escaped command line.
func (c *Command) String() string {
	return shutil.EscapeSlice(c.Argv())
}

// Runner starts external commands.
type Runner interface {
	// Run runs c and waits for it to exit. A non-zero exit is reported as
	// *ExitError.
	Run(ctx context.Context, c *Command) error
	// Start starts c and returns without waiting. If c.NewProcessGroup is
	// set, cancelling ctx kills the whole group.
	Start(ctx context.Context, c *Command) (Process, error)
}

// Process is a started command.
type Process interface {
	// Pid returns the process ID.
	Pid() int
	// Wait waits for the process to exit. A non-zero exit is reported as
	// *ExitError.
	Wait() error
	// Terminate asks the process, or its whole group if it was started
	// with NewProcessGroup, to exit.
	Terminate() error
	// Kill forcibly stops the process, or its group.
	Kill() error
}

// ExitError reports a command that ran and exited with a non-zero code or
// was killed by a signal.
type ExitError struct {
	Cmdline string
	// Code is the exit code, or 128 plus the signal number as shells report
	// it if the command was killed by a signal.
	Code int
	// Signal is the signal that killed the command, if any.
	Signal syscall.Signal
}

func (e *ExitError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("%s killed by signal %v", e.Cmdline, e.Signal)
	}
	return fmt.Sprintf("%s exited with code %d", e.Cmdline, e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int { return e.Code }
