// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package timing records how long each stage of an integration run takes
// (build, fixture server, driver, teardown) and writes the result as
// timing.json.
package timing

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

// Log is a tree of timed stages.
type Log struct {
	// Root holds the top-level stages. Its own timestamps are unused.
	Root *Stage

	clk clock.Clock
}

// NewLog returns an empty Log using the wall clock.
func NewLog() *Log {
	return NewLogWithClock(clock.NewClock())
}

// NewLogWithClock returns an empty Log reading time from clk.
func NewLogWithClock(clk clock.Clock) *Log {
	return &Log{Root: &Stage{clk: clk}, clk: clk}
}

// WritePretty writes the stages as a nested JSON array of
// [seconds, name, [children...]] entries, one stage per line:
//
//	[[12.000, "exec", [
//	         [10.000, "build", [
//	                 [1.000, "gulp clean"],
//	                 [9.000, "gulp build"]]],
//	         [2.000, "driver"]]]]
func (l *Log) WritePretty(w io.Writer) error {
	l.Root.mu.Lock()
	defer l.Root.mu.Unlock()

	bw := bufio.NewWriter(w)
	io.WriteString(bw, "[")
	for i, s := range l.Root.Children {
		var indent string
		if i > 0 {
			indent = " "
		}
		if err := s.writePretty(bw, indent, " ", i == len(l.Root.Children)-1); err != nil {
			return err
		}
	}
	io.WriteString(bw, "]\n")
	return bw.Flush()
}

// Stage is one timed unit of work.
type Stage struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Children  []*Stage  `json:"children"`

	clk clock.Clock
	mu  sync.Mutex // guards EndTime and Children
}

// StartChild starts a child stage of s. It returns nil if s already ended.
func (s *Stage) StartChild(name string) *Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.EndTime.IsZero() {
		return nil
	}
	c := &Stage{Name: name, StartTime: s.clk.Now(), clk: s.clk}
	s.Children = append(s.Children, c)
	return c
}

// End ends s and any children still running. It is a no-op on a nil or
// already-ended stage.
func (s *Stage) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.EndTime.IsZero() {
		return
	}
	for _, c := range s.Children {
		c.End()
	}
	s.EndTime = s.clk.Now()
}

func (s *Stage) writePretty(w *bufio.Writer, firstIndent, indent string, last bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := json.Marshal(s.Name)
	if err != nil {
		return err
	}
	end := s.EndTime
	if end.IsZero() {
		end = s.clk.Now()
	}
	fmt.Fprintf(w, "%s[%0.3f, %s", firstIndent, end.Sub(s.StartTime).Seconds(), name)

	if len(s.Children) > 0 {
		io.WriteString(w, ", [\n")
		ci := indent + strings.Repeat(" ", 8)
		for i, c := range s.Children {
			if err := c.writePretty(w, ci, ci, i == len(s.Children)-1); err != nil {
				return err
			}
		}
		io.WriteString(w, "]")
	}
	io.WriteString(w, "]")
	if !last {
		io.WriteString(w, ",\n")
	}
	return nil
}
