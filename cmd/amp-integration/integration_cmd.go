// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"go.amp.dev/buildsystem/errors"
	"go.amp.dev/buildsystem/internal/command"
	"go.amp.dev/buildsystem/internal/config"
	"go.amp.dev/buildsystem/internal/execx"
	"go.amp.dev/buildsystem/internal/logging"
	"go.amp.dev/buildsystem/internal/runtimetest"
	"go.amp.dev/buildsystem/internal/timing"
)

const (
	suiteName     = "integration"
	fullLogName   = "full.txt"    // file in ResDir containing full output
	timingLogName = "timing.json" // file in ResDir containing timing information
)

// testRunner is the lifecycle of a runtime test run. It is implemented by
// *runtimetest.Runner and stubbed out in tests.
type testRunner interface {
	Setup(ctx context.Context) error
	Run(ctx context.Context) error
	Teardown(ctx context.Context) error
}

// integrationCmd implements subcommands.Command to run integration tests.
type integrationCmd struct {
	cfg     *config.MutableConfig
	out     io.Writer
	logTime bool
	gate    runtimetest.Gate
	cmds    execx.Runner

	// newRunner can be replaced by tests to stub out the runtime test runner.
	newRunner func(suite *runtimetest.Suite, build runtimetest.BuildStep) testRunner
}

var _ = subcommands.Command(&integrationCmd{})

func newIntegrationCmd(out io.Writer, cmds execx.Runner) *integrationCmd {
	return &integrationCmd{
		cfg:  config.NewMutableConfig(),
		out:  out,
		gate: runtimetest.NewGate(),
		cmds: cmds,
		newRunner: func(suite *runtimetest.Suite, build runtimetest.BuildStep) testRunner {
			return runtimetest.NewRunner(suite, build, cmds)
		},
	}
}

func (*integrationCmd) Name() string     { return "integration" }
func (*integrationCmd) Synopsis() string { return "run integration tests" }
func (*integrationCmd) Usage() string {
	return `Usage: integration [flag]...

Description:
    Builds the runtime and runs the integration tests in a browser.
    Unless -nobuild is given, "gulp clean" runs first, followed by
    "gulp build --config <config>", or "gulp dist --fortesting --config <config>"
    with -compiled. Exits with a non-zero status if a build command or the
    test driver fails.

Flag:
`
}

func (c *integrationCmd) SetFlags(f *flag.FlagSet) {
	c.cfg.SetFlags(f)
}

func (c *integrationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if len(f.Args()) > 0 {
		io.WriteString(c.out, "Unexpected arguments: "+strings.Join(f.Args(), " ")+"\n\n"+c.Usage())
		return subcommands.ExitUsageError
	}

	level := logging.LevelInfo
	if c.cfg.Verbose {
		level = logging.LevelDebug
	}
	ctx = logging.AttachLogger(ctx, logging.NewSinkLogger(level, c.logTime, logging.NewWriterSink(c.out)))

	if err := c.cfg.DeriveDefaults(); err != nil {
		logging.Info(ctx, "Failed to derive defaults: ", err)
		return subcommands.ExitUsageError
	}
	cfg := c.cfg.Freeze()

	if cfg.Timeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout())
		defer cancel()
	}

	skip, err := c.gate.ShouldNotRun(ctx, cfg)
	if err != nil {
		logging.Info(ctx, "Cannot run integration tests: ", err)
		return subcommands.ExitUsageError
	}
	if skip {
		return subcommands.ExitSuccess
	}

	runtimetest.PrintArgvMessages(ctx, cfg)

	return subcommands.ExitStatus(command.StatusOf(c.run(ctx, cfg)))
}

// run sets up the results directory and drives a runner through its
// lifecycle, stopping at the first failing phase.
func (c *integrationCmd) run(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.ResDir(), 0755); err != nil {
		logging.Info(ctx, err)
		return err
	}

	tl := timing.NewLog()
	ctx = timing.NewContext(ctx, tl)
	ctx, st := timing.Start(ctx, "exec")

	// Write the timing log after the command finishes.
	defer func() {
		st.End()
		if err := writeTimingLog(filepath.Join(cfg.ResDir(), timingLogName), tl); err != nil {
			logging.Info(ctx, err)
		}
	}()

	// Log the full output of the command to disk.
	fullLog, err := os.Create(filepath.Join(cfg.ResDir(), fullLogName))
	if err != nil {
		logging.Info(ctx, err)
		return err
	}
	defer fullLog.Close()

	logger := logging.NewSinkLogger(logging.LevelDebug, true, logging.NewWriterSink(fullLog))
	ctx = logging.AttachLogger(ctx, logger)

	logging.Debug(ctx, "Command line: ", strings.Join(os.Args, " "))
	logging.Info(ctx, "Writing results to ", cfg.ResDir())

	suite, err := runtimetest.NewSuite(suiteName, cfg)
	if err != nil {
		logging.Info(ctx, "Failed to configure tests: ", err)
		return err
	}
	runner := c.newRunner(suite, newGulpBuildStep(c.cmds))

	for _, phase := range []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"setup", runner.Setup},
		{"run", runner.Run},
		{"teardown", runner.Teardown},
	} {
		if err := phase.fn(ctx); err != nil {
			logging.Infof(ctx, "Failed to %s integration tests: %v", phase.name, err)
			logging.Debugf(ctx, "%+v", err)
			return err
		}
	}
	return nil
}

func writeTimingLog(path string, tl *timing.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create timing log")
	}
	defer f.Close()
	return tl.WritePretty(f)
}
