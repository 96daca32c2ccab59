// Copyright 2023 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing

import "context"

type key int

const (
	logKey key = iota
	stageKey
)

// NewContext returns a context carrying l, with l's root as the current stage.
func NewContext(ctx context.Context, l *Log) context.Context {
	ctx = context.WithValue(ctx, logKey, l)
	return context.WithValue(ctx, stageKey, l.Root)
}

// FromContext returns the Log and current Stage carried by ctx.
func FromContext(ctx context.Context) (*Log, *Stage, bool) {
	l, ok := ctx.Value(logKey).(*Log)
	if !ok {
		return nil, nil, false
	}
	s, ok := ctx.Value(stageKey).(*Stage)
	if !ok {
		return nil, nil, false
	}
	return l, s, true
}

// Start starts a stage under the current stage of ctx and returns a context
// in which it is current. Without a Log in ctx the stage is nil, which is
// safe to End:
//
//	ctx, st := timing.Start(ctx, "gulp clean")
//	defer st.End()
func Start(ctx context.Context, name string) (context.Context, *Stage) {
	_, s, ok := FromContext(ctx)
	if !ok {
		return ctx, nil
	}
	c := s.StartChild(name)
	if c == nil {
		return ctx, nil
	}
	return context.WithValue(ctx, stageKey, c), c
}
