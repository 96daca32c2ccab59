// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package execx

import (
	"context"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"go.amp.dev/buildsystem/errors"
)

// ExecRunner is a Runner backed by os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) command(ctx context.Context, c *Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if c.NewProcessGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		cmd.Cancel = func() error {
			return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		}
	}
	return cmd
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, c *Command) error {
	return convertExitError(r.command(ctx, c).Run(), c)
}

// Start implements Runner.
func (r ExecRunner) Start(ctx context.Context, c *Command) (Process, error) {
	cmd := r.command(ctx, c)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", c)
	}
	return &execProcess{cmd: cmd, c: c}, nil
}

type execProcess struct {
	cmd *exec.Cmd
	c   *Command
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Wait() error {
	return convertExitError(p.cmd.Wait(), p.c)
}

func (p *execProcess) signal(sig unix.Signal) error {
	pid := p.cmd.Process.Pid
	if p.c.NewProcessGroup {
		pid = -pid
	}
	if err := unix.Kill(pid, sig); err != nil && err != unix.ESRCH {
		return errors.Wrapf(err, "failed to send %v to %d", sig, pid)
	}
	return nil
}

func (p *execProcess) Terminate() error { return p.signal(unix.SIGTERM) }

func (p *execProcess) Kill() error { return p.signal(unix.SIGKILL) }

func convertExitError(err error, c *Command) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return &ExitError{Cmdline: c.String(), Code: 128 + int(ws.Signal()), Signal: ws.Signal()}
		}
		if ee.ExitCode() > 0 {
			return &ExitError{Cmdline: c.String(), Code: ee.ExitCode()}
		}
	}
	return errors.Wrapf(err, "failed to run %s", c)
}
