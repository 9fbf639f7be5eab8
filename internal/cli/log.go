// Package cli implements the vpypenode command-line interface.
//
// The commands run the vpype nodes registered in pkg/nodes: one at a time
// (run), over many files (batch), as a dry run (explain) or behind an HTTP
// server (serve). The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - nodes, schema: List nodes and describe their parameters
//   - run: Run one node on a file or stdin
//   - batch: Run one node over many files concurrently
//   - explain: Show the planned vpype command and its stage chain
//   - serve: Serve the nodes over HTTP
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. The server can also log to a rotating
// file (log.file in the config).
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/vpypenode/internal/config"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// fileLogger returns a logger that writes to both base's writer and a
// rotating log file, or base itself when no file is configured. The
// returned closer flushes the file.
func fileLogger(base *log.Logger, w io.Writer, cfg config.LogConfig) (*log.Logger, io.Closer) {
	if cfg.File == "" {
		return base, io.NopCloser(nil)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	l := log.NewWithOptions(io.MultiWriter(w, rotator), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           base.GetLevel(),
		Formatter:       log.LogfmtFormatter,
	})
	return l, rotator
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Processed 12 files (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
