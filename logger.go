package main

import (
	"io"
	"log/slog"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogger builds a JSON logger on a rotating file. The TUI owns the
// terminal, so nothing may log to stderr while it runs.
func setupLogger(logDir string, level slog.Leveler, rot LogRotationConfig) (*slog.Logger, io.WriteCloser) {
	w := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "clustermap.log"),
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, w
}
