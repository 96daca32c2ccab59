// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// EnumFlag implements flag.Value for a flag restricted to a fixed set of names.
type EnumFlag struct {
	valid  map[string]int
	assign func(val int)
	def    string
}

// NewEnumFlag returns an EnumFlag accepting the keys of valid. assign receives
// the mapped value, and is called immediately with the value of def.
func NewEnumFlag(valid map[string]int, assign func(val int), def string) *EnumFlag {
	f := &EnumFlag{valid: valid, assign: assign, def: def}
	if err := f.Set(def); err != nil {
		panic(err)
	}
	return f
}

// Default returns the name assigned when the flag is not given.
func (f *EnumFlag) Default() string { return f.def }

// QuotedValues returns the accepted names, quoted and comma-separated.
func (f *EnumFlag) QuotedValues() string {
	names := maps.Keys(f.valid)
	slices.Sort(names)
	for i, n := range names {
		names[i] = strconv.Quote(n)
	}
	return strings.Join(names, ", ")
}

func (f *EnumFlag) String() string { return "" }

// Set implements flag.Value.
func (f *EnumFlag) Set(v string) error {
	ev, ok := f.valid[v]
	if !ok {
		return fmt.Errorf("must be in %s", f.QuotedValues())
	}
	f.assign(ev)
	return nil
}

// ListFlag implements flag.Value for a flag holding a sep-separated list.
// Empty items are dropped.
type ListFlag struct {
	sep    string
	assign func(vals []string)
}

// NewListFlag returns a ListFlag. assign is called immediately with def.
func NewListFlag(sep string, assign func(vals []string), def []string) *ListFlag {
	assign(def)
	return &ListFlag{sep: sep, assign: assign}
}

func (f *ListFlag) String() string { return "" }

// Set implements flag.Value.
func (f *ListFlag) Set(v string) error {
	var vals []string
	for _, s := range strings.Split(v, f.sep) {
		if s = strings.TrimSpace(s); s != "" {
			vals = append(vals, s)
		}
	}
	f.assign(vals)
	return nil
}

// DurationFlag implements flag.Value for an integer count of units.
type DurationFlag struct {
	units time.Duration
	dst   *time.Duration
}

// NewDurationFlag returns a DurationFlag storing into dst, which is set to def.
func NewDurationFlag(units time.Duration, dst *time.Duration, def time.Duration) *DurationFlag {
	*dst = def
	return &DurationFlag{units: units, dst: dst}
}

func (f *DurationFlag) String() string { return "" }

// Set implements flag.Value.
func (f *DurationFlag) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("negative duration %d", n)
	}
	*f.dst = time.Duration(n) * f.units
	return nil
}
