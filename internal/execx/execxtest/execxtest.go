// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execxtest provides a fake execx.Runner for unit tests.
package execxtest

import (
	"context"
	"io"
	"strings"
	"sync"

	"go.amp.dev/buildsystem/internal/execx"
)

// Result is the canned outcome of a command.
type Result struct {
	// Output is written to the command's stdout.
	Output string
	// ExitCode, if non-zero, makes the command fail with *execx.ExitError.
	ExitCode int
	// Err, if non-nil, is returned instead of running the command.
	Err error
}

// fakePidBase is above the kernel's pid limit, so fake pids and process
// groups never name a real process.
const fakePidBase = 1 << 30

// Runner records every command it is asked to run. Commands without a
// configured result succeed silently.
type Runner struct {
	mu      sync.Mutex
	results map[string]Result
	cmds    []*execx.Command
	procs   []*Process
	nextPid int
}

var _ execx.Runner = (*Runner)(nil)

// NewRunner returns a Runner with no canned results.
func NewRunner() *Runner {
	return &Runner{results: make(map[string]Result), nextPid: fakePidBase}
}

// SetResult sets the outcome of the command whose argv, joined by single
// spaces, equals cmdline.
func (r *Runner) SetResult(cmdline string, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[cmdline] = res
}

// Commands returns the command lines run or started so far, in order.
func (r *Runner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var lines []string
	for _, c := range r.cmds {
		lines = append(lines, strings.Join(c.Argv(), " "))
	}
	return lines
}

// Recorded returns the commands run or started so far.
func (r *Runner) Recorded() []*execx.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*execx.Command(nil), r.cmds...)
}

// Processes returns the processes returned by Start.
func (r *Runner) Processes() []*Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Process(nil), r.procs...)
}

func (r *Runner) record(c *execx.Command) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, c)
	return r.results[strings.Join(c.Argv(), " ")]
}

func finish(c *execx.Command, res Result) error {
	if res.Output != "" && c.Stdout != nil {
		io.WriteString(c.Stdout, res.Output)
	}
	if res.ExitCode != 0 {
		return &execx.ExitError{Cmdline: c.String(), Code: res.ExitCode}
	}
	return nil
}

// Run implements execx.Runner.
func (r *Runner) Run(ctx context.Context, c *execx.Command) error {
	res := r.record(c)
	if res.Err != nil {
		return res.Err
	}
	return finish(c, res)
}

// Start implements execx.Runner. The returned process exits as soon as
// Wait is called.
func (r *Runner) Start(ctx context.Context, c *execx.Command) (execx.Process, error) {
	res := r.record(c)
	if res.Err != nil {
		return nil, res.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextPid++
	p := &Process{pid: r.nextPid, c: c, res: res}
	r.procs = append(r.procs, p)
	return p, nil
}

// Process is a fake execx.Process.
type Process struct {
	pid int
	c   *execx.Command
	res Result

	mu         sync.Mutex
	terminated bool
	killed     bool
}

// Pid implements execx.Process.
func (p *Process) Pid() int { return p.pid }

// Wait implements execx.Process.
func (p *Process) Wait() error {
	return finish(p.c, p.res)
}

// Terminate implements execx.Process.
func (p *Process) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = true
	return nil
}

// Kill implements execx.Process.
func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	return nil
}

// Terminated reports whether Terminate was called.
func (p *Process) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// Killed reports whether Kill was called.
func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}
