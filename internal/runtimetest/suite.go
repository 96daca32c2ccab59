// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimetest runs a browser-based runtime test suite: it builds the
// runtime, serves test fixtures, drives the browsers through the test driver
// and cleans up afterwards.
package runtimetest

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go.amp.dev/buildsystem/errors"
	"go.amp.dev/buildsystem/internal/config"
)

// Launcher names understood by the driver.
const (
	launcherChrome         = "Chrome_no_extensions"
	launcherChromeHeadless = "Chrome_no_extensions_headless"
	launcherChromeFlags    = "Chrome_flags"
	launcherChromeCanary   = "ChromeCanary"
	launcherFirefox        = "Firefox"
	launcherFirefoxFlags   = "Firefox_flags"
	launcherIE             = "IE"
	launcherSafari         = "Safari"
)

// commonFiles are loaded before the test files of every suite.
var commonFiles = []string{
	"test/_init_tests.js",
	"test/fixtures/*.html",
	"dist/amp.js",
}

// suiteFiles are the default test globs of each known suite.
var suiteFiles = map[string][]string{
	"integration": {
		"test/integration/**/*.js",
		"extensions/**/test/integration/**/*.js",
	},
}

// Launcher is a custom browser launcher definition.
type Launcher struct {
	// Base is the launcher this one derives from.
	Base string
	// Flags are extra command line flags for locally launched browsers.
	Flags []string
	// Capabilities are extra properties, such as Sauce Labs capabilities.
	Capabilities map[string]string
}

// MarshalJSON flattens capabilities into the launcher object.
func (l Launcher) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(l.Capabilities)+2)
	for k, v := range l.Capabilities {
		m[k] = v
	}
	m["base"] = l.Base
	if len(l.Flags) > 0 {
		m["flags"] = l.Flags
	}
	return json.Marshal(m)
}

// ClientOptions are passed to the test code running in the browser.
type ClientOptions struct {
	UseCompiledJs  bool   `json:"useCompiledJs"`
	SinglePass     bool   `json:"singlePass"`
	AMPConfig      string `json:"ampConfig"`
	Grep           string `json:"grep,omitempty"`
	VerboseLogging bool   `json:"verboseLogging"`
	CaptureConsole bool   `json:"captureConsole"`
	TestServerPort int    `json:"testServerPort"`
}

// Suite is the runtime test configuration of one named suite. It is
// computed once from the invocation flags and written out as the driver's
// configuration file.
type Suite struct {
	Name            string
	Files           []string
	Browsers        []string
	CustomLaunchers map[string]Launcher
	Reporters       []string
	SingleRun       bool
	Client          ClientOptions

	cfg *config.Config
}

// NewSuite returns the Suite named name for cfg.
func NewSuite(name string, cfg *config.Config) (*Suite, error) {
	defaults, ok := suiteFiles[name]
	if !ok {
		return nil, errors.Errorf("unknown test suite %q", name)
	}

	s := &Suite{
		Name:            name,
		CustomLaunchers: make(map[string]Launcher),
		SingleRun:       !cfg.Watch(),
		cfg:             cfg,
	}

	s.Files = append(s.Files, commonFiles...)
	if files := cfg.Files(); len(files) > 0 {
		s.Files = append(s.Files, files...)
	} else {
		s.Files = append(s.Files, defaults...)
	}

	if err := s.selectBrowsers(); err != nil {
		return nil, err
	}

	if (cfg.TestNames() || len(cfg.Files()) > 0 || cfg.Verbose()) && !cfg.CI() {
		s.Reporters = []string{"mocha"}
	} else {
		s.Reporters = []string{"dots"}
	}
	if cfg.Coverage() {
		s.Reporters = append(s.Reporters, "coverage-istanbul")
	}

	s.Client = ClientOptions{
		UseCompiledJs:  cfg.Compiled(),
		SinglePass:     cfg.SinglePass(),
		AMPConfig:      cfg.AMPConfig().String(),
		Grep:           cfg.Grep(),
		VerboseLogging: cfg.Verbose(),
		CaptureConsole: cfg.Verbose() || len(cfg.Files()) > 0,
		TestServerPort: cfg.TestServerPort(),
	}
	return s, nil
}

// selectBrowsers fills Browsers and CustomLaunchers. The first matching
// browser flag wins.
func (s *Suite) selectBrowsers() error {
	cfg := s.cfg
	switch {
	case cfg.SauceLabs():
		m := cfg.BrowserMatrix()
		names := m.Default
		if cfg.Stable() {
			names = m.Stable
		} else if cfg.Beta() {
			names = m.Beta
		}
		if len(names) == 0 {
			return errors.New("browser matrix selects no Sauce Labs browsers")
		}
		for _, name := range names {
			caps, ok := m.Launcher(name)
			if !ok {
				return errors.Errorf("browser %q has no launcher definition", name)
			}
			s.CustomLaunchers[name] = Launcher{Base: "SauceLabs", Capabilities: caps}
		}
		s.Browsers = slices.Clone(names)
	case cfg.ChromeCanary():
		s.Browsers = []string{launcherChromeCanary}
	case cfg.Firefox():
		if cfg.Headless() {
			s.Browsers = []string{launcherFirefoxFlags}
			s.CustomLaunchers[launcherFirefoxFlags] = Launcher{Base: launcherFirefox, Flags: []string{"-headless"}}
		} else {
			s.Browsers = []string{launcherFirefox}
		}
	case cfg.IE():
		s.Browsers = []string{launcherIE}
	case cfg.Safari():
		s.Browsers = []string{launcherSafari}
	case len(cfg.ChromeFlags()) > 0:
		var flags []string
		for _, f := range cfg.ChromeFlags() {
			flags = append(flags, "--"+strings.TrimPrefix(f, "--"))
		}
		s.Browsers = []string{launcherChromeFlags}
		s.CustomLaunchers[launcherChromeFlags] = Launcher{Base: "Chrome", Flags: flags}
	case cfg.Headless():
		s.Browsers = []string{launcherChromeHeadless}
	default:
		s.Browsers = []string{launcherChrome}
	}
	return nil
}

// usesLocalChrome reports whether the suite launches a locally installed
// stable Chrome.
func (s *Suite) usesLocalChrome() bool {
	for _, b := range s.Browsers {
		switch b {
		case launcherChrome, launcherChromeHeadless, launcherChromeFlags:
			return true
		}
	}
	return false
}

type clientConfig struct {
	Mocha struct {
		Grep string `json:"grep,omitempty"`
	} `json:"mocha"`
	CaptureConsole bool          `json:"captureConsole"`
	AMP            ClientOptions `json:"amp"`
}

type driverConfig struct {
	BasePath        string              `json:"basePath"`
	Files           []string            `json:"files"`
	Browsers        []string            `json:"browsers"`
	CustomLaunchers map[string]Launcher `json:"customLaunchers,omitempty"`
	Reporters       []string            `json:"reporters"`
	SingleRun       bool                `json:"singleRun"`
	AutoWatch       bool                `json:"autoWatch"`
	Client          clientConfig        `json:"client"`
}

// DriverConfig returns the driver configuration file contents. basePath
// is the directory test files are resolved against and serverPort is the
// port the fixture server listens on. If baseConfig is non-empty, the
// generated file applies that driver configuration module first.
func (s *Suite) DriverConfig(basePath, baseConfig string, serverPort int) ([]byte, error) {
	dc := driverConfig{
		BasePath:        basePath,
		Files:           s.Files,
		Browsers:        s.Browsers,
		CustomLaunchers: s.CustomLaunchers,
		Reporters:       s.Reporters,
		SingleRun:       s.SingleRun,
		AutoWatch:       !s.SingleRun,
	}
	dc.Client.Mocha.Grep = s.Client.Grep
	dc.Client.CaptureConsole = s.Client.CaptureConsole
	dc.Client.AMP = s.Client
	dc.Client.AMP.TestServerPort = serverPort

	b, err := json.MarshalIndent(dc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal driver config")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "// Generated for the %s suite by amp-integration.\n", s.Name)
	fmt.Fprintf(&sb, "// Launchers: %s\n", strings.Join(sortedLaunchers(s.CustomLaunchers), ", "))
	sb.WriteString("module.exports = function(config) {\n")
	if baseConfig != "" {
		q, _ := json.Marshal(baseConfig)
		fmt.Fprintf(&sb, "  require(%s)(config);\n", q)
	}
	fmt.Fprintf(&sb, "  config.set(%s);\n};\n", indent(string(b), "  "))
	return []byte(sb.String()), nil
}

func sortedLaunchers(m map[string]Launcher) []string {
	names := maps.Keys(m)
	slices.Sort(names)
	if len(names) == 0 {
		return []string{"none"}
	}
	return names
}

// indent prefixes every line but the first with prefix.
func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
