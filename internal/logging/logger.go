// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	// FileName enables a rotated log file. Empty logs to stdout only.
	FileName string
	// ToStdout also writes to stdout when FileName is set.
	ToStdout bool
	Level    string
	JSON     bool
	// MaxSizeMB is the rotation threshold, default 50.
	MaxSizeMB int
	// Console replaces stdout, e.g. os.Stderr for stdio protocol servers.
	Console io.Writer
}

// New builds a logger from p. The returned closer releases the log file and
// is a no-op for stdout-only loggers.
func New(p Params) (*slog.Logger, io.Closer) {
	console := p.Console
	if console == nil {
		console = os.Stdout
	}
	var (
		out              = console
		closer io.Closer = nopCloser{}
	)
	if p.FileName != "" {
		if !strings.HasSuffix(p.FileName, ".log") {
			p.FileName += ".log"
		}
		if p.MaxSizeMB <= 0 {
			p.MaxSizeMB = 50
		}
		file := &lumberjack.Logger{
			Filename:   p.FileName,
			MaxSize:    p.MaxSizeMB, // megabytes
			MaxBackups: 10,
			Compress:   true,
		}
		closer = file
		out = file
		if p.ToStdout {
			out = io.MultiWriter(console, file)
		}
	}
	return slog.New(NewHandler(out, p.Level, p.JSON)), closer
}

// NewHandler returns a text or JSON handler writing to w at level.
func NewHandler(w io.Writer, level string, json bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
