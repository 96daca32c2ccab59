// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil converts argument lists to shell command lines.
package shutil

import (
	"fmt"
	"regexp"
	"strings"
)

// Leading "=" is unsafe in zsh, so it is only allowed after the first character.
const (
	leadingSafeChars  = `-\w@%+:,./`
	trailingSafeChars = leadingSafeChars + "="
)

var safeRE = regexp.MustCompile(fmt.Sprintf("^[%s][%s]*$", leadingSafeChars, trailingSafeChars))

// Escape quotes s for a POSIX shell unless it is already safe as a bare word.
func Escape(s string) string {
	if safeRE.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// EscapeSlice escapes each of args and joins them with spaces, producing a
// command line suitable for logs and copy-paste.
func EscapeSlice(args []string) string {
	escaped := make([]string, len(args))
	for i, a := range args {
		escaped[i] = Escape(a)
	}
	return strings.Join(escaped, " ")
}
