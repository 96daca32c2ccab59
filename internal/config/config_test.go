// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.amp.dev/buildsystem/testutil"
)

// parse registers flags on a fresh MutableConfig, parses args and derives
// defaults with the repository directory set to a temporary directory.
func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("TRAVIS", "")
	t.Setenv("SAUCE_USERNAME", "")
	t.Setenv("SAUCE_ACCESS_KEY", "")

	mcfg := NewMutableConfig()
	f := flag.NewFlagSet("", flag.ContinueOnError)
	mcfg.SetFlags(f)
	args = append([]string{"-repodir=" + testutil.TempDir(t)}, args...)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%q) failed: %v", args, err)
	}
	if err := mcfg.DeriveDefaults(); err != nil {
		return nil, err
	}
	return mcfg.Freeze(), nil
}

func TestDefaults(t *testing.T) {
	cfg, err := parse(t)
	if err != nil {
		t.Fatal("DeriveDefaults failed: ", err)
	}
	if cfg.NoBuild() || cfg.Compiled() {
		t.Errorf("NoBuild() = %v, Compiled() = %v; want false, false", cfg.NoBuild(), cfg.Compiled())
	}
	if cfg.AMPConfig() != ConfigProd {
		t.Errorf("AMPConfig() = %v; want %v", cfg.AMPConfig(), ConfigProd)
	}
	if diff := cmp.Diff(cfg.Gulp(), []string{"gulp"}); diff != "" {
		t.Errorf("Gulp() mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(cfg.Driver(), []string{defaultDriver}); diff != "" {
		t.Errorf("Driver() mismatch (-got +want):\n%s", diff)
	}
	if cfg.TestServerPort() != defaultTestServerPort {
		t.Errorf("TestServerPort() = %d; want %d", cfg.TestServerPort(), defaultTestServerPort)
	}
	wantPrefix := filepath.Join(cfg.RepoDir(), resultsSubdir) + string(filepath.Separator)
	if !strings.HasPrefix(cfg.ResDir(), wantPrefix) {
		t.Errorf("ResDir() = %q; want prefix %q", cfg.ResDir(), wantPrefix)
	}
	if cfg.CI() {
		t.Error("CI() = true; want false")
	}
	if len(cfg.BrowserMatrix().Default) == 0 {
		t.Error("BrowserMatrix().Default is empty")
	}
}

func TestFlags(t *testing.T) {
	cfg, err := parse(t,
		"-nobuild", "-compiled", "-config=canary",
		"-chrome_flags=a,b=c", "-files=test/a.js,test/b.js",
		"-gulp=npx gulp --silent", "-driver=karma",
		"-grep=foo", "-timeout=30", "-resultsdir=/tmp/res")
	if err != nil {
		t.Fatal("DeriveDefaults failed: ", err)
	}
	for _, tc := range []struct {
		name      string
		got, want interface{}
	}{
		{"NoBuild", cfg.NoBuild(), true},
		{"Compiled", cfg.Compiled(), true},
		{"AMPConfig", cfg.AMPConfig().String(), "canary"},
		{"ChromeFlags", cfg.ChromeFlags(), []string{"a", "b=c"}},
		{"Files", cfg.Files(), []string{"test/a.js", "test/b.js"}},
		{"Gulp", cfg.Gulp(), []string{"npx", "gulp", "--silent"}},
		{"Driver", cfg.Driver(), []string{"karma"}},
		{"Grep", cfg.Grep(), "foo"},
		{"Timeout", cfg.Timeout(), 30 * time.Second},
		{"ResDir", cfg.ResDir(), "/tmp/res"},
	} {
		if diff := cmp.Diff(tc.got, tc.want); diff != "" {
			t.Errorf("%s() mismatch (-got +want):\n%s", tc.name, diff)
		}
	}
}

func TestQuotedCommandLines(t *testing.T) {
	cfg, err := parse(t,
		`-gulp=node 'node_modules/.bin/gulp' --color`,
		`-driver=karma start "test/karma conf.js" run\ once`)
	if err != nil {
		t.Fatal("DeriveDefaults failed: ", err)
	}
	if diff := cmp.Diff(cfg.Gulp(), []string{"node", "node_modules/.bin/gulp", "--color"}); diff != "" {
		t.Errorf("Gulp() mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(cfg.Driver(), []string{"karma", "start", "test/karma conf.js", "run once"}); diff != "" {
		t.Errorf("Driver() mismatch (-got +want):\n%s", diff)
	}
}

func TestGettersReturnCopies(t *testing.T) {
	cfg, err := parse(t, "-files=a.js")
	if err != nil {
		t.Fatal("DeriveDefaults failed: ", err)
	}
	cfg.Files()[0] = "modified"
	cfg.Gulp()[0] = "modified"
	cfg.BrowserMatrix().Default[0] = "modified"
	if got := cfg.Files()[0]; got != "a.js" {
		t.Errorf("Files()[0] = %q after modifying a copy; want %q", got, "a.js")
	}
	if got := cfg.Gulp()[0]; got != "gulp" {
		t.Errorf("Gulp()[0] = %q after modifying a copy; want %q", got, "gulp")
	}
	if got := cfg.BrowserMatrix().Default[0]; got == "modified" {
		t.Error("BrowserMatrix() returned shared state")
	}
}

func TestDeriveDefaultsErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{"StableAndBeta", []string{"-saucelabs", "-stable", "-beta"}},
		{"StableWithoutSauceLabs", []string{"-stable"}},
		{"NegativePort", []string{"-testserverport=-1"}},
		{"BadPort", []string{"-testserverport=70000"}},
		{"EmptyGulp", []string{"-gulp="}},
		{"UnterminatedDriver", []string{`-driver="karma`}},
		{"UnterminatedGulp", []string{`-gulp=npx 'gulp`}},
		{"BlankGulp", []string{"-gulp=   "}},
		{"MissingMatrix", []string{"-browsermatrix=/nonexistent/browsers.yaml"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parse(t, tc.args...); err == nil {
				t.Errorf("DeriveDefaults succeeded for %q; want error", tc.args)
			}
		})
	}
}

func TestBadConfigFlag(t *testing.T) {
	f := flag.NewFlagSet("", flag.ContinueOnError)
	f.SetOutput(&strings.Builder{})
	NewMutableConfig().SetFlags(f)
	if err := f.Parse([]string{"-config=staging"}); err == nil {
		t.Error("Parse(-config=staging) succeeded; want error")
	}
}

func TestEnvironment(t *testing.T) {
	mcfg := NewMutableConfig()
	f := flag.NewFlagSet("", flag.ContinueOnError)
	mcfg.SetFlags(f)
	if err := f.Parse([]string{"-repodir=" + testutil.TempDir(t)}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CI", "")
	t.Setenv("TRAVIS", "true")
	t.Setenv("SAUCE_USERNAME", "user")
	t.Setenv("SAUCE_ACCESS_KEY", "key")
	if err := mcfg.DeriveDefaults(); err != nil {
		t.Fatal("DeriveDefaults failed: ", err)
	}
	cfg := mcfg.Freeze()
	if !cfg.CI() {
		t.Error("CI() = false with TRAVIS=true; want true")
	}
	if u, k := cfg.SauceCredentials(); u != "user" || k != "key" {
		t.Errorf("SauceCredentials() = (%q, %q); want (%q, %q)", u, k, "user", "key")
	}
}

func TestBrowserMatrixFile(t *testing.T) {
	td := testutil.TempDir(t)
	if err := testutil.WriteFiles(td, map[string]string{
		"ok.yaml": `
default: [SL_A]
stable: [SL_A]
launchers:
  SL_A:
    base: SauceLabs
    browserName: chrome
`,
		"undefined.yaml": `
default: [SL_B]
launchers: {}
`,
		"unknown_key.yaml": `
default: [SL_A]
nightly: [SL_A]
launchers:
  SL_A: {base: SauceLabs}
`,
	}); err != nil {
		t.Fatal(err)
	}

	m, err := loadBrowserMatrix(filepath.Join(td, "ok.yaml"))
	if err != nil {
		t.Fatal("loadBrowserMatrix failed: ", err)
	}
	caps, ok := m.Launcher("SL_A")
	if !ok {
		t.Fatal("Launcher(SL_A) not found")
	}
	if diff := cmp.Diff(caps, map[string]string{"base": "SauceLabs", "browserName": "chrome"}); diff != "" {
		t.Errorf("Launcher(SL_A) mismatch (-got +want):\n%s", diff)
	}
	if _, ok := m.Launcher("SL_Missing"); ok {
		t.Error("Launcher(SL_Missing) found; want not found")
	}

	for _, fn := range []string{"undefined.yaml", "unknown_key.yaml"} {
		if _, err := loadBrowserMatrix(filepath.Join(td, fn)); err == nil {
			t.Errorf("loadBrowserMatrix(%q) succeeded; want error", fn)
		}
	}
}

func TestBuiltInBrowserMatrix(t *testing.T) {
	m, err := loadBrowserMatrix("")
	if err != nil {
		t.Fatal("loadBrowserMatrix failed: ", err)
	}
	for _, list := range [][]string{m.Default, m.Stable, m.Beta} {
		for _, name := range list {
			if _, ok := m.Launcher(name); !ok {
				t.Errorf("Launcher(%q) not found", name)
			}
		}
	}
}

func TestAMPConfigString(t *testing.T) {
	for _, tc := range []struct {
		c    AMPConfig
		want string
	}{
		{ConfigProd, "prod"},
		{ConfigCanary, "canary"},
		{AMPConfig(7), "AMPConfig(7)"},
	} {
		if got := tc.c.String(); got != tc.want {
			t.Errorf("AMPConfig(%d).String() = %q; want %q", int(tc.c), got, tc.want)
		}
	}
}
