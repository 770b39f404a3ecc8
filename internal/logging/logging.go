// Package logging builds the slog.Logger handed to every component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// Options selects level, format and destinations.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	// File, when set, receives a copy of every record. It is rotated at
	// MaxSizeMB and rotated files are removed after MaxAgeDays.
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	// Console defaults to os.Stderr.
	Console io.Writer
}

// New returns a logger and a closer for any file it opened.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	if opts.Console != nil {
		w = opts.Console
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename: opts.File,
			MaxSize:  opts.MaxSizeMB,
			MaxAge:   opts.MaxAgeDays,
		}
		w = io.MultiWriter(w, lj)
		closer = lj
	}

	ho := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, ho)
	case "json":
		h = slog.NewJSONHandler(w, ho)
	default:
		_ = closer.Close()
		return nil, nil, &catalog.ConfigError{
			Field: "log_format",
			Msg:   fmt.Sprintf("unknown format %q (want text or json)", opts.Format),
		}
	}

	return slog.New(h), closer, nil
}

// ParseLevel accepts slog level names plus "warning" and "trace".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	case "trace":
		return slog.LevelDebug, nil
	case "critical":
		return slog.LevelError, nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, &catalog.ConfigError{Field: "log_level", Msg: fmt.Sprintf("unknown level %q", s)}
	}
	return l, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
