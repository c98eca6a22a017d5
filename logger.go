// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dsgpu

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/dsgpu/internal/gpu"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for dsgpu and its internal packages.
// By default, dsgpu produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by dsgpu:
//   - [slog.LevelDebug]: per stage dispatch, pipeline compilation, buffer allocation
//   - [slog.LevelInfo]: reallocation after a scale change, pipelines ready
//   - [slog.LevelWarn]: rejected adapters, work tile overflow
//
// Example:
//
//	dsgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by dsgpu.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
