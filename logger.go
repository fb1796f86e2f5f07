package pocketvec

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pocketvec-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithStore tags every record with the store variant ("heap" or "flat").
func (l *Logger) WithStore(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("store", kind),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(id string, dimension int, err error) {
	if err != nil {
		l.Debug("add rejected",
			"id", id,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.Debug("add completed",
			"id", id,
			"dimension", dimension,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(limit, resultsFound int, err error) {
	if err != nil {
		l.Warn("search failed",
			"limit", limit,
			"error", err,
		)
	} else {
		l.Debug("search completed",
			"limit", limit,
			"results", resultsFound,
		)
	}
}

// LogSave logs a save in the given file format ("growable", "encrypted" or "flat").
func (l *Logger) LogSave(path, fileFormat string, count int, err error) {
	if err != nil {
		l.Error("save failed",
			"path", path,
			"format", fileFormat,
			"error", err,
		)
	} else {
		l.Info("store saved",
			"path", path,
			"format", fileFormat,
			"count", count,
		)
	}
}

// LogLoad logs a heap store load, including any quantization mode switch.
func (l *Logger) LogLoad(path string, info LoadInfo, err error) {
	if err != nil {
		l.Error("load failed",
			"path", path,
			"error", err,
		)
		return
	}

	if info.ModeChanged {
		l.Info("quantization mode changed by load",
			"path", path,
			"from", modeName(info.PreviousQuantized),
			"to", modeName(info.Quantized),
		)
	}

	l.Info("store loaded",
		"path", path,
		"mode", modeName(info.Quantized),
		"dimension", info.Dim,
		"count", info.Count,
	)
}

// LogMap logs a flat store load.
func (l *Logger) LogMap(path string, dimension, count int, quantized bool, err error) {
	if err != nil {
		l.Error("map failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Info("flat store mapped",
			"path", path,
			"mode", modeName(quantized),
			"dimension", dimension,
			"count", count,
		)
	}
}

func modeName(quantized bool) string {
	if quantized {
		return "int8"
	}
	return "float32"
}
