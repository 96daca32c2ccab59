// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import "time"

// Config holds the invocation flags of one run. It is immutable; slice and
// map getters return copies.
type Config struct {
	m *MutableConfig
}

// NoBuild skips the build step entirely.
func (c *Config) NoBuild() bool { return c.m.NoBuild }

// Compiled runs tests against the production build-for-testing output.
func (c *Config) Compiled() bool { return c.m.Compiled }

// AMPConfig is the runtime configuration passed to gulp as --config.
func (c *Config) AMPConfig() AMPConfig { return c.m.AMPConfig }

func (c *Config) ChromeCanary() bool { return c.m.ChromeCanary }
func (c *Config) Firefox() bool      { return c.m.Firefox }
func (c *Config) IE() bool           { return c.m.IE }
func (c *Config) Safari() bool       { return c.m.Safari }

// ChromeFlags are extra Chrome switches, without the leading "--".
func (c *Config) ChromeFlags() []string { return append([]string(nil), c.m.ChromeFlags...) }

func (c *Config) SinglePass() bool { return c.m.SinglePass }
func (c *Config) Coverage() bool   { return c.m.Coverage }
func (c *Config) Headless() bool   { return c.m.Headless }
func (c *Config) SauceLabs() bool  { return c.m.SauceLabs }
func (c *Config) Stable() bool     { return c.m.Stable }
func (c *Config) Beta() bool       { return c.m.Beta }

// Grep is a pattern restricting which tests run; empty runs all.
func (c *Config) Grep() string { return c.m.Grep }

// Files are test files or globs relative to RepoDir replacing the default set.
func (c *Config) Files() []string { return append([]string(nil), c.m.Files...) }

func (c *Config) TestNames() bool { return c.m.TestNames }
func (c *Config) Verbose() bool   { return c.m.Verbose }
func (c *Config) Watch() bool     { return c.m.Watch }
func (c *Config) NoHelp() bool    { return c.m.NoHelp }

// RepoDir is the absolute path of the repository root.
func (c *Config) RepoDir() string { return c.m.RepoDir }

// Gulp is the argv prefix used to invoke gulp.
func (c *Config) Gulp() []string { return append([]string(nil), c.m.gulp...) }

// Driver is the argv prefix used to invoke the browser test driver.
func (c *Config) Driver() []string { return append([]string(nil), c.m.driver...) }

// ResDir is where full.txt, timing.json and the driver config are written.
func (c *Config) ResDir() string { return c.m.ResDir }

// TestServerPort is the port of the fixture server. Zero picks a free port.
func (c *Config) TestServerPort() int { return c.m.TestServerPort }

// BrowserMatrix is the Sauce Labs browser matrix.
func (c *Config) BrowserMatrix() *BrowserMatrix { return c.m.matrix.clone() }

// Timeout bounds the whole command; zero means no limit.
func (c *Config) Timeout() time.Duration { return c.m.Timeout }

// CI reports whether the run happens on a continuous integration bot.
func (c *Config) CI() bool { return c.m.ci }

// SauceCredentials returns the Sauce Labs user name and access key from the
// environment; either may be empty.
func (c *Config) SauceCredentials() (username, accessKey string) {
	return c.m.sauceUsername, c.m.sauceAccessKey
}
