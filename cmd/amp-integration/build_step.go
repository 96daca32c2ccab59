// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"strings"

	"go.amp.dev/buildsystem/internal/command"
	"go.amp.dev/buildsystem/internal/config"
	"go.amp.dev/buildsystem/internal/execx"
	"go.amp.dev/buildsystem/internal/logging"
	"go.amp.dev/buildsystem/internal/runtimetest"
	"go.amp.dev/buildsystem/internal/timing"
)

// gulpBuildStep builds the runtime with gulp before integration tests run.
type gulpBuildStep struct {
	cmds execx.Runner
}

var _ runtimetest.BuildStep = (*gulpBuildStep)(nil)

func newGulpBuildStep(cmds execx.Runner) *gulpBuildStep {
	return &gulpBuildStep{cmds: cmds}
}

// Build cleans the output directories and then builds either the
// production build for testing or the unminified runtime. Any failing
// gulp task is fatal.
func (b *gulpBuildStep) Build(ctx context.Context, cfg *config.Config) error {
	if cfg.NoBuild() {
		logging.Debug(ctx, "Skipping build")
		return nil
	}

	if err := b.gulp(ctx, cfg, "clean"); err != nil {
		return err
	}
	ampConfig := cfg.AMPConfig().String()
	if cfg.Compiled() {
		return b.gulp(ctx, cfg, "dist", "--fortesting", "--config", ampConfig)
	}
	return b.gulp(ctx, cfg, "build", "--config", ampConfig)
}

// gulp runs a gulp task in the repository and waits for it to finish.
func (b *gulpBuildStep) gulp(ctx context.Context, cfg *config.Config, args ...string) error {
	argv := append(cfg.Gulp(), args...)
	ctx, st := timing.Start(ctx, "gulp "+strings.Join(args, " "))
	defer st.End()

	out := logging.NewLineWriter(ctx, logging.LevelInfo, "")
	defer out.Flush()
	cmd := &execx.Command{
		Name:   argv[0],
		Args:   argv[1:],
		Dir:    cfg.RepoDir(),
		Stdout: out,
		Stderr: out,
	}
	logging.Info(ctx, "Running ", cmd)
	if err := b.cmds.Run(ctx, cmd); err != nil {
		return command.WrapStatus(err, "%s failed", cmd)
	}
	return nil
}
