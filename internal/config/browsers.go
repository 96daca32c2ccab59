// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	_ "embed"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"

	"go.amp.dev/buildsystem/errors"
)

//go:embed browsers.yaml
var defaultBrowserMatrix []byte

// BrowserMatrix lists the Sauce Labs launchers to run against.
type BrowserMatrix struct {
	Default []string `yaml:"default"`
	Stable  []string `yaml:"stable"`
	Beta    []string `yaml:"beta"`
	// Launchers maps a launcher name to its Sauce Labs capabilities.
	Launchers map[string]map[string]string `yaml:"launchers"`
}

// Launcher returns the capabilities of the named launcher.
func (m *BrowserMatrix) Launcher(name string) (map[string]string, bool) {
	caps, ok := m.Launchers[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(caps), true
}

func (m *BrowserMatrix) validate() error {
	if len(m.Default) == 0 {
		return errors.New("no default browsers")
	}
	for _, list := range [][]string{m.Default, m.Stable, m.Beta} {
		for _, name := range list {
			if _, ok := m.Launchers[name]; !ok {
				return errors.Errorf("browser %q has no launcher definition", name)
			}
		}
	}
	return nil
}

func (m *BrowserMatrix) clone() *BrowserMatrix {
	c := &BrowserMatrix{
		Default:   slices.Clone(m.Default),
		Stable:    slices.Clone(m.Stable),
		Beta:      slices.Clone(m.Beta),
		Launchers: make(map[string]map[string]string, len(m.Launchers)),
	}
	for k, v := range m.Launchers {
		c.Launchers[k] = maps.Clone(v)
	}
	return c
}

// parseBrowserMatrix parses YAML matrix data. src names the data in errors.
func parseBrowserMatrix(b []byte, src string) (*BrowserMatrix, error) {
	var m BrowserMatrix
	if err := yaml.UnmarshalStrict(b, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", src)
	}
	if err := m.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid browser matrix %s", src)
	}
	return &m, nil
}

// loadBrowserMatrix reads the matrix at path, or the built-in one if path is empty.
func loadBrowserMatrix(path string) (*BrowserMatrix, error) {
	if path == "" {
		return parseBrowserMatrix(defaultBrowserMatrix, "built-in browser matrix")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read browser matrix")
	}
	return parseBrowserMatrix(b, path)
}
