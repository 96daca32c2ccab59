// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging

import (
	"bytes"
	"context"
	"sync"
)

// LineWriter is an io.Writer that logs every complete line written to it.
// It is used to stream the output of external commands into the log.
// Call Flush after the last write to emit a trailing partial line.
type LineWriter struct {
	ctx    context.Context
	level  Level
	prefix string

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLineWriter returns a LineWriter logging to ctx at level, prepending
// prefix to every line.
func NewLineWriter(ctx context.Context, level Level, prefix string) *LineWriter {
	return &LineWriter{ctx: ctx, level: level, prefix: prefix}
}

// Write implements io.Writer.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimRight(w.buf.Next(i+1), "\r\n"))
		emit(w.ctx, w.level, w.prefix+line)
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		emit(w.ctx, w.level, w.prefix+w.buf.String())
		w.buf.Reset()
	}
}
