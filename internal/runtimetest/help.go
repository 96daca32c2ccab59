// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimetest

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go.amp.dev/buildsystem/internal/config"
	"go.amp.dev/buildsystem/internal/logging"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// flagMessages describes each active flag. Only flags present here are
// reported.
var flagMessages = map[string]func(cfg *config.Config) (active bool, msg string){
	"beta": func(cfg *config.Config) (bool, string) {
		return cfg.Beta(), "Running tests on Sauce Labs beta browsers."
	},
	"chrome_canary": func(cfg *config.Config) (bool, string) {
		return cfg.ChromeCanary(), "Running tests on Chrome Canary."
	},
	"chrome_flags": func(cfg *config.Config) (bool, string) {
		return len(cfg.ChromeFlags()) > 0, "Setting flags for Chrome: " + cyan(strings.Join(cfg.ChromeFlags(), ","))
	},
	"compiled": func(cfg *config.Config) (bool, string) {
		return cfg.Compiled(), "Running tests against minified code."
	},
	"config": func(cfg *config.Config) (bool, string) {
		return cfg.AMPConfig() != config.ConfigProd, "Setting the runtime's AMP_CONFIG to " + cyan(cfg.AMPConfig().String()) + "."
	},
	"coverage": func(cfg *config.Config) (bool, string) {
		return cfg.Coverage(), "Running tests in code coverage mode."
	},
	"files": func(cfg *config.Config) (bool, string) {
		return len(cfg.Files()) > 0, "Running tests in the file(s): " + cyan(strings.Join(cfg.Files(), ","))
	},
	"firefox": func(cfg *config.Config) (bool, string) {
		return cfg.Firefox(), "Running tests on Firefox."
	},
	"grep": func(cfg *config.Config) (bool, string) {
		return cfg.Grep() != "", fmt.Sprintf("Only running tests that match the pattern %q.", cfg.Grep())
	},
	"headless": func(cfg *config.Config) (bool, string) {
		return cfg.Headless(), "Running tests in a headless Chrome window."
	},
	"ie": func(cfg *config.Config) (bool, string) {
		return cfg.IE(), "Running tests on IE."
	},
	"nobuild": func(cfg *config.Config) (bool, string) {
		return cfg.NoBuild(), "Skipping build."
	},
	"safari": func(cfg *config.Config) (bool, string) {
		return cfg.Safari(), "Running tests on Safari."
	},
	"saucelabs": func(cfg *config.Config) (bool, string) {
		return cfg.SauceLabs(), "Running tests on Sauce Labs browsers."
	},
	"single_pass": func(cfg *config.Config) (bool, string) {
		return cfg.SinglePass(), "Running tests in Single Pass mode."
	},
	"stable": func(cfg *config.Config) (bool, string) {
		return cfg.Stable(), "Running tests on Sauce Labs stable browsers."
	},
	"testnames": func(cfg *config.Config) (bool, string) {
		return cfg.TestNames(), "Listing the names of all tests being run."
	},
	"verbose": func(cfg *config.Config) (bool, string) {
		return cfg.Verbose(), "Enabling verbose mode. Expect lots of output!"
	},
	"watch": func(cfg *config.Config) (bool, string) {
		return cfg.Watch(), "Enabling watch mode. Editing and saving a file will cause the tests for that file to be re-run in the same browser instance."
	},
}

// PrintArgvMessages logs hints about useful flags followed by one line per
// active flag. Nothing is logged with -nohelp or on CI bots.
func PrintArgvMessages(ctx context.Context, cfg *config.Config) {
	if cfg.NoHelp() || cfg.CI() {
		return
	}

	logging.Info(ctx, green("Run "), cyan("amp-integration help integration"), green(" to see a list of all test flags."))
	logging.Info(ctx, green("⤷ Use "), cyan("-nohelp"), green(" to silence these messages."))
	if !cfg.TestNames() && len(cfg.Files()) == 0 {
		logging.Info(ctx, green("⤷ Use "), cyan("-testnames"), green(" to see the names of all tests being run."))
	}
	if !cfg.Headless() {
		logging.Info(ctx, green("⤷ Use "), cyan("-headless"), green(" to run tests in a headless Chrome window."))
	}
	if !cfg.Compiled() {
		logging.Info(ctx, green("Running tests against unminified code."))
	}

	names := maps.Keys(flagMessages)
	slices.Sort(names)
	for _, name := range names {
		if active, msg := flagMessages[name](cfg); active {
			logging.Info(ctx, yellow("-"+name+":"), " ", green(msg))
		}
	}
}
