// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimetest

import (
	"flag"
	"testing"

	"go.amp.dev/buildsystem/internal/config"
	"go.amp.dev/buildsystem/testutil"
)

// newConfig returns a Config parsed from args with a temporary repository
// directory and a clean environment.
func newConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	for _, name := range []string{"CI", "TRAVIS", "SAUCE_USERNAME", "SAUCE_ACCESS_KEY"} {
		t.Setenv(name, "")
	}
	return parseConfig(t, args...)
}

// parseConfig is like newConfig but keeps the environment.
func parseConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	td := testutil.TempDir(t)
	mcfg := config.NewMutableConfig()
	f := flag.NewFlagSet("", flag.ContinueOnError)
	mcfg.SetFlags(f)
	args = append([]string{"-repodir=" + td, "-resultsdir=" + td + "/results", "-testserverport=0"}, args...)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%q) failed: %v", args, err)
	}
	if err := mcfg.DeriveDefaults(); err != nil {
		t.Fatal("DeriveDefaults failed: ", err)
	}
	return mcfg.Freeze()
}
