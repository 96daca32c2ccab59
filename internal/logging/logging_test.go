// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package logging_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.amp.dev/buildsystem/internal/logging"
)

type memorySink struct {
	mu   sync.Mutex
	msgs []string
}

func (s *memorySink) Log(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *memorySink) get() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

func TestSinkLoggerLevel(t *testing.T) {
	var sink memorySink
	logger := logging.NewSinkLogger(logging.LevelInfo, false, &sink)
	logger.Log(logging.LevelDebug, time.Time{}, "hidden")
	logger.Log(logging.LevelInfo, time.Time{}, "shown")

	if diff := cmp.Diff(sink.get(), []string{"shown"}); diff != "" {
		t.Errorf("Messages mismatch (-got +want):\n%s", diff)
	}
}

func TestSinkLoggerTimestamp(t *testing.T) {
	var sink memorySink
	logger := logging.NewSinkLogger(logging.LevelDebug, true, &sink)
	ts := time.Date(2023, 4, 5, 6, 7, 8, 9000, time.UTC)
	logger.Log(logging.LevelInfo, ts, "hello")

	want := []string{"2023-04-05T06:07:08.000009Z hello"}
	if diff := cmp.Diff(sink.get(), want); diff != "" {
		t.Errorf("Messages mismatch (-got +want):\n%s", diff)
	}
}

func TestWriterSink(t *testing.T) {
	var b bytes.Buffer
	sink := logging.NewWriterSink(&b)
	sink.Log("foo")
	sink.Log("bar")
	if got, want := b.String(), "foo\nbar\n"; got != want {
		t.Errorf("WriterSink wrote %q; want %q", got, want)
	}
}

func TestAttachLoggerPropagates(t *testing.T) {
	var parentSink, childSink memorySink
	ctx := logging.AttachLogger(context.Background(), logging.NewSinkLogger(logging.LevelInfo, false, &parentSink))
	child := logging.AttachLogger(ctx, logging.NewSinkLogger(logging.LevelDebug, false, &childSink))

	logging.Info(child, "a")
	logging.Debugf(child, "b%d", 1)
	logging.Infof(ctx, "c")

	if diff := cmp.Diff(childSink.get(), []string{"a", "b1"}); diff != "" {
		t.Errorf("Child messages mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(parentSink.get(), []string{"a", "c"}); diff != "" {
		t.Errorf("Parent messages mismatch (-got +want):\n%s", diff)
	}
}

func TestNoLogger(t *testing.T) {
	ctx := context.Background()
	// Must not panic.
	logging.Info(ctx, "dropped")
}

func TestLineWriter(t *testing.T) {
	var sink memorySink
	ctx := logging.AttachLogger(context.Background(), logging.NewSinkLogger(logging.LevelDebug, false, &sink))

	w := logging.NewLineWriter(ctx, logging.LevelInfo, "[gulp] ")
	w.Write([]byte("Starting 'clean'...\nFinished"))
	w.Write([]byte(" 'clean'\r\npartial"))
	w.Flush()

	want := []string{"[gulp] Starting 'clean'...", "[gulp] Finished 'clean'", "[gulp] partial"}
	if diff := cmp.Diff(sink.get(), want); diff != "" {
		t.Errorf("Messages mismatch (-got +want):\n%s", diff)
	}
}
