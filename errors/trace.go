// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// maxFrames is the number of frames kept per error.
const maxFrames = 8

const truncated = "\t..."

// trace is a snapshot of program counters.
type trace []uintptr

// capture records the current goroutine's stack, skipping skip frames above
// the caller of capture.
func capture(skip int) trace {
	pcs := make([]uintptr, maxFrames+1)
	return trace(pcs[:runtime.Callers(skip+2, pcs)])
}

func (t trace) String() string {
	var lines []string
	frames := runtime.CallersFrames(t)
	for {
		f, more := frames.Next()
		lines = append(lines, fmt.Sprintf("\tat %s (%s:%d)", f.Function, filepath.Base(f.File), f.Line))
		if !more {
			break
		}
		if len(lines) >= maxFrames {
			lines = append(lines, truncated)
			break
		}
	}
	return strings.Join(lines, "\n")
}
