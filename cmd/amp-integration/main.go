// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package main implements the amp-integration executable, used to build the
// runtime and run its browser integration tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/crypto/ssh/terminal"

	"go.amp.dev/buildsystem/internal/command"
	"go.amp.dev/buildsystem/internal/execx"
)

// Version is the version info of this command. It is filled in at link time.
var Version = "<unknown>"

// installSignalHandler restores the terminal state when the process is
// terminated by a signal, which prevents deferred functions from running.
// Child processes are asked to exit as well.
func installSignalHandler() {
	var st *terminal.State
	fd := int(os.Stdin.Fd())
	if terminal.IsTerminal(fd) {
		var err error
		if st, err = terminal.GetState(fd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get terminal state: %v\n", err)
		}
	}
	command.InstallSignalHandler(os.Stdout, func(os.Signal) {
		if st != nil {
			terminal.Restore(fd, st)
		}
	})
}

// doMain implements the main body of the program. It's a separate function so
// that its deferred functions will run before os.Exit makes the program exit
// immediately.
func doMain() int {
	ic := newIntegrationCmd(os.Stdout, execx.ExecRunner{})

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(ic, "")

	version := flag.Bool("version", false, "print version and exit")
	logTime := flag.Bool("logtime", true, "include date/time headers in logs")
	flag.Parse()

	if *version {
		fmt.Printf("amp-integration version %s\n", Version)
		return 0
	}
	ic.logTime = *logTime

	installSignalHandler()

	return int(subcommands.Execute(context.Background()))
}

func main() {
	os.Exit(doMain())
}
