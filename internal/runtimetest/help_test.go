// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimetest

import (
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"go.amp.dev/buildsystem/internal/logging"
	"go.amp.dev/buildsystem/internal/logging/loggingtest"
)

func init() {
	color.NoColor = true
}

func printedMessages(t *testing.T, args ...string) []string {
	t.Helper()
	logger := loggingtest.NewLogger(t, logging.LevelInfo)
	ctx := logging.AttachLogger(context.Background(), logger)
	PrintArgvMessages(ctx, newConfig(t, args...))
	return logger.Logs()
}

func TestPrintArgvMessages(t *testing.T) {
	got := printedMessages(t, "-nobuild", "-compiled", "-grep=foo", "-headless")
	want := []string{
		"Run amp-integration help integration to see a list of all test flags.",
		"⤷ Use -nohelp to silence these messages.",
		"⤷ Use -testnames to see the names of all tests being run.",
		"-compiled: Running tests against minified code.",
		`-grep: Only running tests that match the pattern "foo".`,
		"-headless: Running tests in a headless Chrome window.",
		"-nobuild: Skipping build.",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("PrintArgvMessages mismatch (-got +want):\n%s", diff)
	}
}

func TestPrintArgvMessagesDefaults(t *testing.T) {
	got := printedMessages(t)
	want := []string{
		"Run amp-integration help integration to see a list of all test flags.",
		"⤷ Use -nohelp to silence these messages.",
		"⤷ Use -testnames to see the names of all tests being run.",
		"⤷ Use -headless to run tests in a headless Chrome window.",
		"Running tests against unminified code.",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("PrintArgvMessages mismatch (-got +want):\n%s", diff)
	}
}

func TestPrintArgvMessagesFlags(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"-config=canary"}, "-config: Setting the runtime's AMP_CONFIG to canary."},
		{[]string{"-files=a.js,b.js"}, "-files: Running tests in the file(s): a.js,b.js"},
		{[]string{"-chrome_flags=x,y"}, "-chrome_flags: Setting flags for Chrome: x,y"},
		{[]string{"-watch"}, "-watch: Enabling watch mode."},
		{[]string{"-saucelabs", "-stable"}, "-stable: Running tests on Sauce Labs stable browsers."},
	} {
		got := strings.Join(printedMessages(t, tc.args...), "\n")
		if !strings.Contains(got, tc.want) {
			t.Errorf("PrintArgvMessages(%q) = %q; want it to contain %q", tc.args, got, tc.want)
		}
	}
}

func TestPrintArgvMessagesSilenced(t *testing.T) {
	if got := printedMessages(t, "-nohelp", "-nobuild"); len(got) != 0 {
		t.Errorf("PrintArgvMessages with -nohelp logged %q; want nothing", got)
	}

	t.Setenv("CI", "true")
	logger := loggingtest.NewLogger(t, logging.LevelInfo)
	ctx := logging.AttachLogger(context.Background(), logger)
	PrintArgvMessages(ctx, parseConfig(t, "-nobuild"))
	if got := logger.Logs(); len(got) != 0 {
		t.Errorf("PrintArgvMessages on CI logged %q; want nothing", got)
	}
}
