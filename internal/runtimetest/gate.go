// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimetest

import (
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/goreleaser/fileglob"

	"go.amp.dev/buildsystem/errors"
	"go.amp.dev/buildsystem/internal/config"
	"go.amp.dev/buildsystem/internal/logging"
)

// Gate decides whether a run should be skipped before anything is built.
type Gate interface {
	// ShouldNotRun returns true if the run should end successfully without
	// side effects. An error means the invocation cannot work at all.
	ShouldNotRun(ctx context.Context, cfg *config.Config) (bool, error)
}

// NewGate returns the Gate checking the environment and requested files.
func NewGate() Gate {
	return envGate{}
}

type envGate struct{}

func (envGate) ShouldNotRun(ctx context.Context, cfg *config.Config) (bool, error) {
	if cfg.SauceLabs() {
		user, key := cfg.SauceCredentials()
		if user == "" {
			return false, errors.New("missing SAUCE_USERNAME environment variable")
		}
		if key == "" {
			return false, errors.New("missing SAUCE_ACCESS_KEY environment variable")
		}
	}

	patterns := cfg.Files()
	if len(patterns) == 0 {
		return false, nil
	}
	n, err := countMatches(cfg.RepoDir(), patterns)
	if err != nil {
		return false, err
	}
	if n == 0 {
		logging.Infof(ctx, "No test files match %q; nothing to run", patterns)
		return true, nil
	}
	logging.Debugf(ctx, "%d test file(s) match %q", n, patterns)
	return false, nil
}

const globMeta = "*?[{"

// countMatches returns the number of files under root matched by patterns.
func countMatches(root string, patterns []string) (int, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	for _, p := range patterns {
		if !strings.ContainsAny(p, globMeta) {
			if _, err := fs.Stat(fsys, p); err == nil {
				seen[p] = struct{}{}
			}
			continue
		}
		matches, err := fileglob.Glob(p, fileglob.WithFs(fsys))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, errors.Wrapf(err, "bad -files pattern %q", p)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}
	return len(seen), nil
}
