// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"
)

var selfName = filepath.Base(os.Args[0])

// InstallSignalHandler calls callback when SIGINT or SIGTERM arrives, asks
// direct child processes (gulp, karma, browsers) to terminate, and exits
// with status 1. Deferred functions do not run in that case.
func InstallSignalHandler(out io.Writer, callback func(sig os.Signal)) {
	ch := make(chan os.Signal, 1)
	go func() {
		sig := <-ch
		fmt.Fprintf(out, "\n%s: Caught %v signal; exiting\n", selfName, sig)
		callback(sig)
		terminateChildren(out)
		os.Exit(1)
	}()
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)
}

func terminateChildren(out io.Writer) {
	children, err := childProcesses()
	if err != nil {
		fmt.Fprintf(out, "Failed to list child processes: %v\n", err)
		return
	}
	for _, c := range children {
		c.Terminate()
	}
}

// childProcesses returns the live direct children of the current process.
func childProcesses() ([]*process.Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	self := int32(os.Getpid())
	var children []*process.Process
	for _, p := range procs {
		if ppid, err := p.Ppid(); err != nil || ppid != self {
			continue
		}
		if st, err := p.Status(); err == nil && slices.Contains(st, process.Zombie) {
			continue
		}
		children = append(children, p)
	}
	return children, nil
}
