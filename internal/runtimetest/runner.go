// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimetest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/go-rod/rod/lib/launcher"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"go.amp.dev/buildsystem/errors"
	"go.amp.dev/buildsystem/internal/command"
	"go.amp.dev/buildsystem/internal/config"
	"go.amp.dev/buildsystem/internal/execx"
	"go.amp.dev/buildsystem/internal/logging"
	"go.amp.dev/buildsystem/internal/timing"
)

const (
	// DriverConfigFile is the name of the driver config written to ResDir.
	DriverConfigFile = "karma.conf.js"

	// baseDriverConfig is the repository's own driver config, applied
	// before the generated settings if it exists.
	baseDriverConfig = "build-system/tasks/karma.conf.js"

	maxServerConns  = 64
	reapTimeout     = 5 * time.Second
	reapInterval    = 100 * time.Millisecond
	teardownTimeout = 30 * time.Second
)

// BuildStep prepares the runtime before tests are served.
type BuildStep interface {
	Build(ctx context.Context, cfg *config.Config) error
}

// Runner runs a Suite. Setup, Run and Teardown must be called in that order,
// each after the previous one returned.
type Runner struct {
	suite *Suite
	cfg   *config.Config
	build BuildStep
	cmds  execx.Runner

	clk         clock.Clock
	lookChrome  func() (string, bool)
	leftovers   func(pgid int) ([]int, error)
	reapTimeout time.Duration

	srv     *http.Server
	srvDone chan error
	port    int
	conf    string
	proc    execx.Process
	exit    int
}

// NewRunner returns a Runner for suite that prepares the runtime with build
// and starts external commands with cmds.
func NewRunner(suite *Suite, build BuildStep, cmds execx.Runner) *Runner {
	return &Runner{
		suite:      suite,
		cfg:        suite.cfg,
		build:      build,
		cmds:       cmds,
		clk:         clock.NewClock(),
		lookChrome:  launcher.LookPath,
		leftovers:   groupMembers,
		reapTimeout: reapTimeout,
	}
}

// DriverConfigPath returns the path of the driver config written by Setup.
func (r *Runner) DriverConfigPath() string {
	return filepath.Join(r.cfg.ResDir(), DriverConfigFile)
}

// ServerPort returns the port the fixture server listens on after Setup.
func (r *Runner) ServerPort() int { return r.port }

// Setup builds the runtime, starts the fixture server and writes the
// driver config.
func (r *Runner) Setup(ctx context.Context) error {
	if err := r.runBuild(ctx); err != nil {
		return err
	}
	if err := r.startServer(ctx); err != nil {
		return err
	}
	return r.writeDriverConfig(ctx)
}

func (r *Runner) runBuild(ctx context.Context) error {
	ctx, st := timing.Start(ctx, "build")
	defer st.End()
	return r.build.Build(ctx, r.cfg)
}

func (r *Runner) startServer(ctx context.Context) error {
	ctx, st := timing.Start(ctx, "start_server")
	defer st.End()

	lis, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", r.cfg.TestServerPort()))
	if err != nil {
		return errors.Wrap(err, "failed to start fixture server")
	}
	r.port = lis.Addr().(*net.TCPAddr).Port
	lis = netutil.LimitListener(lis, maxServerConns)

	r.srv = &http.Server{Handler: fixtureHandler(ctx, r.cfg.RepoDir())}
	r.srvDone = make(chan error, 1)
	go func() {
		err := r.srv.Serve(lis)
		if err == http.ErrServerClosed {
			err = nil
		}
		r.srvDone <- err
	}()
	logging.Infof(ctx, "Serving %s on port %d", r.cfg.RepoDir(), r.port)
	return nil
}

// fixtureHandler serves files under dir and logs every request.
func fixtureHandler(ctx context.Context, dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logging.Debugf(ctx, "Fixture server: %s %s", req.Method, req.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		fs.ServeHTTP(w, req)
	})
}

func (r *Runner) writeDriverConfig(ctx context.Context) error {
	base := filepath.Join(r.cfg.RepoDir(), baseDriverConfig)
	if _, err := os.Stat(base); err != nil {
		base = ""
	}
	b, err := r.suite.DriverConfig(r.cfg.RepoDir(), base, r.port)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.cfg.ResDir(), 0755); err != nil {
		return errors.Wrap(err, "failed to create results dir")
	}
	r.conf = r.DriverConfigPath()
	if err := os.WriteFile(r.conf, b, 0644); err != nil {
		return errors.Wrap(err, "failed to write driver config")
	}
	logging.Debugf(ctx, "Wrote driver config to %s", r.conf)
	return nil
}

// Run runs the driver until it exits. A non-zero driver exit is recorded
// and reported by Teardown.
func (r *Runner) Run(ctx context.Context) error {
	if r.conf == "" {
		return errors.New("Run called before Setup")
	}
	ctx, st := timing.Start(ctx, "run_driver")
	defer st.End()

	drv := r.cfg.Driver()
	out := logging.NewLineWriter(ctx, logging.LevelInfo, "")
	defer out.Flush()
	cmd := &execx.Command{
		Name:            drv[0],
		Args:            append(drv[1:], "start", r.conf),
		Dir:             r.cfg.RepoDir(),
		Env:             r.driverEnv(ctx),
		Stdout:          out,
		Stderr:          out,
		NewProcessGroup: true,
	}
	logging.Infof(ctx, "Running %s", cmd)

	proc, err := r.cmds.Start(ctx, cmd)
	if err != nil {
		return errors.Wrap(err, "failed to start driver")
	}
	r.proc = proc
	logging.Debugf(ctx, "Driver started with pid %d", proc.Pid())

	err = proc.Wait()
	var ee *execx.ExitError
	if errors.As(err, &ee) {
		r.exit = ee.Code
		logging.Debugf(ctx, "Driver failed: %v", ee)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "driver failed")
	}
	return nil
}

func (r *Runner) driverEnv(ctx context.Context) []string {
	var env []string
	if r.cfg.SauceLabs() {
		user, key := r.cfg.SauceCredentials()
		env = append(env, "SAUCE_USERNAME="+user, "SAUCE_ACCESS_KEY="+key)
	}
	if r.suite.usesLocalChrome() && os.Getenv("CHROME_BIN") == "" {
		if p, ok := r.lookChrome(); ok {
			logging.Debugf(ctx, "Using Chrome at %s", p)
			env = append(env, "CHROME_BIN="+p)
		}
	}
	return env
}

// Teardown stops the fixture server and any processes left behind by the
// driver. It returns a *command.StatusError if the driver failed.
// Teardown still runs if ctx is already done, bounded by teardownTimeout.
func (r *Runner) Teardown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()
	ctx, st := timing.Start(ctx, "teardown")
	defer st.End()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.stopServer(gctx) })
	g.Go(func() error { return r.reap(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	if r.exit != 0 {
		msg := fmt.Sprintf("Karma test failed with exit code %d", r.exit)
		logging.Info(ctx, msg)
		return command.NewStatusErrorf(r.exit, "%s", msg)
	}
	return nil
}

func (r *Runner) stopServer(ctx context.Context) error {
	if r.srv == nil {
		return nil
	}
	if err := r.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to stop fixture server")
	}
	if err := <-r.srvDone; err != nil {
		return errors.Wrap(err, "fixture server failed")
	}
	return nil
}

// reap terminates the driver's process group and waits for its members
// to exit. Survivors are killed with the whole group after reapTimeout.
func (r *Runner) reap(ctx context.Context) error {
	if r.proc == nil {
		return nil
	}
	pgid := r.proc.Pid()
	if err := r.proc.Terminate(); err != nil {
		logging.Debugf(ctx, "Failed to terminate driver process group: %v", err)
	}

	deadline := r.clk.Now().Add(r.reapTimeout)
	for {
		pids, err := r.leftovers(pgid)
		if err != nil {
			return errors.Wrap(err, "failed to list driver processes")
		}
		if len(pids) == 0 {
			return nil
		}
		if !r.clk.Now().Before(deadline) {
			logging.Infof(ctx, "Killing leftover driver processes %v", pids)
			if err := r.proc.Kill(); err != nil {
				return errors.Wrap(err, "failed to kill driver process group")
			}
			return nil
		}
		select {
		case <-r.clk.After(reapInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
