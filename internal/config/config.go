// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the invocation flags of an integration run.
//
// Flags are registered on a MutableConfig with SetFlags, completed with
// DeriveDefaults after parsing, and then frozen into a read-only Config that
// is passed explicitly to every component.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/go-shellwords"

	"go.amp.dev/buildsystem/errors"
	"go.amp.dev/buildsystem/internal/command"
)

// AMPConfig selects the runtime configuration applied to the build.
type AMPConfig int

const (
	// ConfigProd is the production runtime configuration.
	ConfigProd AMPConfig = iota
	// ConfigCanary is the canary runtime configuration.
	ConfigCanary
)

func (c AMPConfig) String() string {
	switch c {
	case ConfigProd:
		return "prod"
	case ConfigCanary:
		return "canary"
	default:
		return fmt.Sprintf("AMPConfig(%d)", int(c))
	}
}

const (
	defaultGulp           = "gulp"
	defaultDriver         = "node_modules/.bin/karma"
	defaultTestServerPort = 31862
	resultsSubdir         = "test-results/integration"
)

// MutableConfig is the mutable form of Config. See Config for field meanings.
type MutableConfig struct {
	NoBuild   bool
	Compiled  bool
	AMPConfig AMPConfig

	ChromeCanary bool
	Firefox      bool
	IE           bool
	Safari       bool
	ChromeFlags  []string

	SinglePass bool
	Coverage   bool
	Headless   bool
	SauceLabs  bool
	Stable     bool
	Beta       bool
	Grep       string
	Files      []string
	TestNames  bool
	Verbose    bool
	Watch      bool
	NoHelp     bool

	RepoDir        string
	GulpCmdline    string
	DriverCmdline  string
	ResDir         string
	TestServerPort int
	BrowserMatrix  string
	Timeout        time.Duration

	// Derived by DeriveDefaults.
	gulp           []string
	driver         []string
	matrix         *BrowserMatrix
	ci             bool
	sauceUsername  string
	sauceAccessKey string
}

// NewMutableConfig returns a MutableConfig ready for SetFlags.
func NewMutableConfig() *MutableConfig {
	return &MutableConfig{}
}

// SetFlags registers the integration flags on f.
func (c *MutableConfig) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.NoBuild, "nobuild", false, "skip the build step")
	f.BoolVar(&c.Compiled, "compiled", false, "run tests against production (minified) binaries")
	configs := map[string]int{"prod": int(ConfigProd), "canary": int(ConfigCanary)}
	cf := command.NewEnumFlag(configs, func(v int) { c.AMPConfig = AMPConfig(v) }, "prod")
	f.Var(cf, "config", fmt.Sprintf("runtime AMP_CONFIG (%s; default %q)", cf.QuotedValues(), cf.Default()))

	f.BoolVar(&c.ChromeCanary, "chrome_canary", false, "run tests on Chrome Canary")
	f.Var(command.NewListFlag(",", func(v []string) { c.ChromeFlags = v }, nil), "chrome_flags", "comma-separated flags (without leading --) to launch Chrome with")
	f.BoolVar(&c.Firefox, "firefox", false, "run tests on Firefox")
	f.BoolVar(&c.IE, "ie", false, "run tests on IE")
	f.BoolVar(&c.Safari, "safari", false, "run tests on Safari")

	f.BoolVar(&c.SinglePass, "single_pass", false, "run tests in Single Pass mode")
	f.BoolVar(&c.Coverage, "coverage", false, "run tests in code coverage mode")
	f.BoolVar(&c.Headless, "headless", false, "run tests in a headless Chrome window")
	f.BoolVar(&c.SauceLabs, "saucelabs", false, "run tests on Sauce Labs (requires SAUCE_USERNAME and SAUCE_ACCESS_KEY)")
	f.BoolVar(&c.Stable, "stable", false, "run Sauce Labs tests on stable browsers")
	f.BoolVar(&c.Beta, "beta", false, "run Sauce Labs tests on beta browsers")
	f.StringVar(&c.Grep, "grep", "", "run tests that match the pattern")
	f.Var(command.NewListFlag(",", func(v []string) { c.Files = v }, nil), "files", "comma-separated test files or globs to run")
	f.BoolVar(&c.TestNames, "testnames", false, "list the name of each test being run")
	f.BoolVar(&c.Verbose, "verbose", false, "enable verbose logging")
	f.BoolVar(&c.Watch, "watch", false, "keep the driver running and re-run tests on file changes")
	f.BoolVar(&c.NoHelp, "nohelp", false, "silence help messages printed before the test run")

	f.StringVar(&c.RepoDir, "repodir", "", "repository root to build and serve; current directory if empty")
	f.StringVar(&c.GulpCmdline, "gulp", defaultGulp, "command line used to invoke gulp")
	f.StringVar(&c.DriverCmdline, "driver", defaultDriver, "command line used to invoke the browser test driver")
	f.StringVar(&c.ResDir, "resultsdir", "", "directory for logs and driver config; timestamped under repodir if empty")
	f.IntVar(&c.TestServerPort, "testserverport", defaultTestServerPort, "port of the fixture server used by tests; 0 picks a free port")
	f.StringVar(&c.BrowserMatrix, "browsermatrix", "", "YAML file with the Sauce Labs browser matrix; built-in if empty")
	f.Var(command.NewDurationFlag(time.Second, &c.Timeout, 0), "timeout", "overall timeout in seconds; 0 for none")
}

// DeriveDefaults validates flag combinations and fills in values derived
// from other flags and the environment.
func (c *MutableConfig) DeriveDefaults() error {
	if c.Stable && c.Beta {
		return errors.New("-stable and -beta are mutually exclusive")
	}
	if (c.Stable || c.Beta) && !c.SauceLabs {
		return errors.New("-stable and -beta require -saucelabs")
	}
	if c.TestServerPort < 0 || c.TestServerPort > 65535 {
		return errors.Errorf("invalid -testserverport %d", c.TestServerPort)
	}

	if c.RepoDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get working directory")
		}
		c.RepoDir = wd
	}
	abs, err := filepath.Abs(c.RepoDir)
	if err != nil {
		return errors.Wrapf(err, "bad -repodir %q", c.RepoDir)
	}
	c.RepoDir = abs

	if c.ResDir == "" {
		c.ResDir = filepath.Join(c.RepoDir, resultsSubdir, time.Now().Format("20060102-150405"))
	}

	if c.gulp, err = splitCmdline("gulp", c.GulpCmdline); err != nil {
		return err
	}
	if c.driver, err = splitCmdline("driver", c.DriverCmdline); err != nil {
		return err
	}

	if c.matrix, err = loadBrowserMatrix(c.BrowserMatrix); err != nil {
		return err
	}

	c.ci = os.Getenv("CI") == "true" || os.Getenv("TRAVIS") == "true"
	c.sauceUsername = os.Getenv("SAUCE_USERNAME")
	c.sauceAccessKey = os.Getenv("SAUCE_ACCESS_KEY")
	return nil
}

func splitCmdline(name, s string) ([]string, error) {
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "bad -%s", name)
	}
	if len(args) == 0 {
		return nil, errors.Errorf("-%s must not be empty", name)
	}
	return args, nil
}

// Freeze returns a read-only Config. c must not be modified afterwards.
func (c *MutableConfig) Freeze() *Config {
	return &Config{m: c}
}
