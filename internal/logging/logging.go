// Package logging wraps charmbracelet/log behind a small, stable API used
// by the CLI and the LogReporter. Keeping this
// seam thin means the engine code never imports charmbracelet/log directly.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Options configures a Logger at construction time.
type Options struct {
	Writer    io.Writer
	Level     string
	Human     bool
	Component string
}

// Logger is a structured logger carrying a persistent set of fields.
type Logger struct {
	base   *cblog.Logger
	fields []interface{}
}

// New creates a Logger from Options, defaulting to info level and stdout.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	logOpts := cblog.Options{
		Level:           level,
		ReportTimestamp: true,
	}
	if !opts.Human {
		logOpts.Formatter = cblog.JSONFormatter
	}

	base := cblog.NewWithOptions(writer, logOpts)

	var fields []interface{}
	if opts.Component != "" {
		fields = append(fields, "component", opts.Component)
	}

	return &Logger{base: base, fields: fields}, nil
}

// With derives a logger that always includes the supplied key/value pairs.
func (l *Logger) With(fields ...interface{}) *Logger {
	if l == nil {
		return l
	}
	merged := make([]interface{}, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{base: l.base, fields: merged}
}

// WithFields is a map-based convenience wrapper over With, emitting keys in
// sorted order for deterministic output.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	if l == nil || len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return l.With(args...)
}

// Debug writes a debug-level log entry.
func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(cblog.DebugLevel, msg, fields...) }

// Info writes an info-level log entry.
func (l *Logger) Info(msg string, fields ...interface{}) { l.log(cblog.InfoLevel, msg, fields...) }

// Warn writes a warning-level log entry.
func (l *Logger) Warn(msg string, fields ...interface{}) { l.log(cblog.WarnLevel, msg, fields...) }

// Error writes an error-level log entry, attaching err when non-nil.
func (l *Logger) Error(err error, msg string, fields ...interface{}) {
	if err != nil {
		fields = append(fields, "error", err)
	}
	l.log(cblog.ErrorLevel, msg, fields...)
}

func (l *Logger) log(level cblog.Level, msg string, fields ...interface{}) {
	if l == nil || l.base == nil {
		return
	}
	payload := make([]interface{}, 0, len(l.fields)+len(fields))
	payload = append(payload, l.fields...)
	payload = append(payload, fields...)

	switch level {
	case cblog.DebugLevel:
		l.base.Debug(msg, payload...)
	case cblog.WarnLevel:
		l.base.Warn(msg, payload...)
	case cblog.ErrorLevel:
		l.base.Error(msg, payload...)
	default:
		l.base.Info(msg, payload...)
	}
}
