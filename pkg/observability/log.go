package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
// Register it with SetNodeHooks, SetProcessHooks, SetCacheHooks and
// SetHTTPHooks to trace a run without an external backend.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetNodeHooks(h)
	SetProcessHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnRunStart(_ context.Context, node string) {
	h.Logger.Debug("node start", "node", node)
}

func (h *LogHooks) OnRunComplete(_ context.Context, node string, cached bool, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("node failed", "node", node, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("node done", "node", node, "cached", cached, "duration", d)
}

func (h *LogHooks) OnExecStart(_ context.Context, tool string, args []string) {
	h.Logger.Debug("process start", "tool", tool, "args", len(args))
}

func (h *LogHooks) OnExecComplete(_ context.Context, tool string, exitCode int, d time.Duration, err error) {
	h.Logger.Debug("process exit", "tool", tool, "code", exitCode, "duration", d, "failed", err != nil)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}
