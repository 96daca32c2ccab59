// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimetest

import (
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"
)

// groupMembers returns the pids of live processes in process group pgid.
// Zombies are skipped since they cannot be signalled away.
func groupMembers(pgid int) ([]int, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	var pids []int
	for _, p := range procs {
		pid := int(p.Pid)
		if g, err := unix.Getpgid(pid); err != nil || g != pgid {
			continue
		}
		if st, err := p.Status(); err == nil && slices.Contains(st, process.Zombie) {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}
