// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process logger: a charmbracelet/log handler
// behind log/slog so library packages only depend on slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix is shown before every log line.
const Prefix = "lfqrun"

type (
	// Options configures New.
	Options struct {
		// Verbose lowers the level to debug and adds timestamps.
		Verbose bool
		// JSON switches to JSON lines, for log collectors.
		JSON bool
	}
)

// New returns a slog logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := log.Options{
		Prefix: Prefix,
		Level:  log.InfoLevel,
	}
	if opts.Verbose {
		handlerOpts.Level = log.DebugLevel
		handlerOpts.ReportTimestamp = true
		handlerOpts.TimeFormat = time.RFC3339
	}
	if opts.JSON {
		handlerOpts.Formatter = log.JSONFormatter
	}

	return slog.New(log.NewWithOptions(w, handlerOpts))
}

// Install makes the logger built from opts the slog default and returns it.
func Install(w io.Writer, opts Options) *slog.Logger {
	logger := New(w, opts)
	slog.SetDefault(logger)
	return logger
}
