// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimetest

import (
	"context"
	"testing"

	"go.amp.dev/buildsystem/internal/logging"
	"go.amp.dev/buildsystem/internal/logging/loggingtest"
	"go.amp.dev/buildsystem/testutil"
)

func TestGateSauceLabsCredentials(t *testing.T) {
	for _, tc := range []struct {
		name, user, key string
		wantErr         bool
	}{
		{"Both", "user", "key", false},
		{"NoUser", "", "key", true},
		{"NoKey", "user", "", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("CI", "")
			t.Setenv("TRAVIS", "")
			t.Setenv("SAUCE_USERNAME", tc.user)
			t.Setenv("SAUCE_ACCESS_KEY", tc.key)
			cfg := parseConfig(t, "-saucelabs")
			skip, err := NewGate().ShouldNotRun(context.Background(), cfg)
			if tc.wantErr {
				if err == nil {
					t.Error("ShouldNotRun succeeded; want error")
				}
				return
			}
			if err != nil {
				t.Fatal("ShouldNotRun failed: ", err)
			}
			if skip {
				t.Error("ShouldNotRun = true; want false")
			}
		})
	}
}

func TestGateFiles(t *testing.T) {
	for _, tc := range []struct {
		name  string
		files string
		want  bool
	}{
		{"Literal", "test/integration/test-a.js", false},
		{"Glob", "test/integration/*.js", false},
		{"RecursiveGlob", "test/**/*.js", false},
		{"MissingLiteral", "test/integration/test-missing.js", true},
		{"EmptyGlob", "test/unit/*.js", true},
		{"OneOfTwo", "test/missing.js,test/integration/test-a.js", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newConfig(t, "-files="+tc.files)
			if err := testutil.WriteFiles(cfg.RepoDir(), map[string]string{
				"test/integration/test-a.js": "",
				"test/integration/test-b.js": "",
				"test/unit/README.md":        "",
			}); err != nil {
				t.Fatal(err)
			}
			logger := loggingtest.NewLogger(t, logging.LevelInfo)
			ctx := logging.AttachLogger(context.Background(), logger)
			skip, err := NewGate().ShouldNotRun(ctx, cfg)
			if err != nil {
				t.Fatal("ShouldNotRun failed: ", err)
			}
			if skip != tc.want {
				t.Errorf("ShouldNotRun = %v; want %v", skip, tc.want)
			}
			if skip && len(logger.Logs()) == 0 {
				t.Error("ShouldNotRun skipped without logging a reason")
			}
		})
	}
}

func TestGateNoFlags(t *testing.T) {
	skip, err := NewGate().ShouldNotRun(context.Background(), newConfig(t))
	if err != nil {
		t.Fatal("ShouldNotRun failed: ", err)
	}
	if skip {
		t.Error("ShouldNotRun = true; want false")
	}
}
