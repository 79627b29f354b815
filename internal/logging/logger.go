// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is one of trace, debug, info, warn, error, or off.
	Level string
	// File, when set, receives JSON log lines rotated by size instead of stderr.
	File string
}

// New builds the CLI logger.
func New(opts Options) *pterm.Logger {
	var w io.Writer = os.Stderr
	formatter := pterm.LogFormatterColorful
	if opts.File != "" {
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		formatter = pterm.LogFormatterJSON
	}
	return pterm.DefaultLogger.
		WithLevel(ParseLevel(opts.Level)).
		WithWriter(w).
		WithFormatter(formatter)
}

// Discard returns a logger that drops everything. Library packages use it when no
// logger is injected.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard).WithLevel(pterm.LogLevelDisabled)
}

// ParseLevel maps a config string to a pterm level. Unknown values mean info.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
