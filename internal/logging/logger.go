// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logging routes log messages through context.Context.
//
// Loggers are attached to a context with AttachLogger, and messages are
// emitted with Info, Infof, Debug and Debugf. A context without a logger
// silently drops messages.
package logging

import (
	"sync"
	"time"
)

// Level is the severity of a log message. Larger is more important.
type Level int

const (
	// LevelDebug is for detail only wanted in verbose runs and full.txt.
	LevelDebug Level = iota
	// LevelInfo is for messages always shown on the console.
	LevelInfo
)

// Logger consumes messages sent via a context.
type Logger interface {
	// Log is called for every message.
	Log(level Level, ts time.Time, msg string)
}

// MultiLogger forwards messages to several loggers.
type MultiLogger struct {
	mu      sync.Mutex
	loggers []Logger
}

// NewMultiLogger returns a MultiLogger forwarding to loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards a message to every underlying logger.
func (ml *MultiLogger) Log(level Level, ts time.Time, msg string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	for _, l := range ml.loggers {
		l.Log(level, ts, msg)
	}
}
