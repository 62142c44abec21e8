// Package logging builds the application logger. Background failures
// (shadow saves, corrupt slots, alarm delivery) land in a rotated file
// under <data>/logs so they stay inspectable after the fact.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Open returns a logger writing to logs/croki.log under dataDir, with
// size-based rotation. The returned closer owns the file handle. If
// the log directory cannot be created, a stderr-only logger is
// returned instead of an error: logging must never keep the
// application from starting.
func Open(dataDir string) (*log.Logger, io.Closer) {
	dir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fallback(err)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "croki.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	logger := log.NewWithOptions(writer, log.Options{
		ReportTimestamp: true,
		Prefix:          "croki",
	})
	return logger, writer
}

func fallback(err error) (*log.Logger, io.Closer) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "croki",
	})
	logger.Warn("falling back to stderr logging", "err", err)
	return logger, io.NopCloser(nil)
}
