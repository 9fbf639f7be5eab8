package vpype

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vpypenode/pkg/observability"
)

// DefaultBin is the executable looked up on PATH when none is configured.
const DefaultBin = "vpype"

// Result is the outcome of one process run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Tool runs the vpype executable. A Tool holds no per-call state and may be
// shared by concurrent callers.
type Tool struct {
	Bin    string
	Logger *log.Logger
}

// New creates a Tool for bin (DefaultBin if empty).
// A nil logger discards output.
func New(bin string, logger *log.Logger) *Tool {
	if bin == "" {
		bin = DefaultBin
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Tool{Bin: bin, Logger: logger}
}

// LookPath resolves the executable, returning ToolNotFoundError if missing.
func (t *Tool) LookPath() (string, error) {
	return lookPath(t.Bin)
}

// Run executes vpype with args and waits for it to exit.
func (t *Tool) Run(ctx context.Context, args []string) (Result, error) {
	return Exec(ctx, t.Logger, t.Bin, args)
}

// Process runs one complete invocation inside a private workspace:
// it materializes input as input.svg, lets build assemble the arguments
// (and write any auxiliary files), runs vpype and returns the content of
// outputName. The workspace is removed before Process returns.
func (t *Tool) Process(ctx context.Context, input, outputName string, build func(ws *Workspace, in, out string) ([]string, error)) (string, error) {
	ws, err := NewWorkspace("vpypenode")
	if err != nil {
		return "", err
	}
	defer ws.Close()

	in := ws.Path("input.svg")
	out := ws.Path(outputName)
	if err := MaterializeFor(ctx, input, in); err != nil {
		return "", err
	}

	args, err := build(ws, in, out)
	if err != nil {
		return "", err
	}

	res, err := t.Run(ctx, args)
	if err != nil {
		return "", err
	}
	return ReadOutput(out, res)
}

// Exec runs bin with args synchronously, capturing stdout and stderr.
//
// A missing executable yields ToolNotFoundError; a nonzero exit yields
// ExternalToolError with stderr verbatim. No retries and no timeout: ctx is
// the only way to stop a hung process. Captured streams are forwarded to the
// logger at debug level.
func Exec(ctx context.Context, logger *log.Logger, bin string, args []string) (Result, error) {
	path, err := lookPath(bin)
	if err != nil {
		return Result{}, err
	}

	argv := append([]string{bin}, args...)
	logger.Debug("exec", "cmd", argv)
	observability.Process().OnExecStart(ctx, bin, args)

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if res.Stdout != "" {
		logger.Debug("stdout", "tool", bin, "text", res.Stdout)
	}
	if res.Stderr != "" {
		logger.Debug("stderr", "tool", bin, "text", res.Stderr)
	}

	err = classify(ctx, bin, argv, runErr, &res)
	observability.Process().OnExecComplete(ctx, bin, res.ExitCode, res.Duration, err)
	return res, err
}

func classify(ctx context.Context, bin string, argv []string, runErr error, res *Result) error {
	if runErr == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", bin, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return &ExternalToolError{Command: argv, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, os.ErrNotExist) {
		return &ToolNotFoundError{Tool: bin, Err: runErr}
	}
	return fmt.Errorf("run %s: %w", bin, runErr)
}

func lookPath(bin string) (string, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", &ToolNotFoundError{Tool: bin, Err: err}
	}
	return path, nil
}

// ReadOutput returns the text of the file at path after a successful run.
// A missing file is reported as OutputMissingError with the run's diagnostics.
func ReadOutput(path string, res Result) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", &OutputMissingError{
			Path:     path,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	if err != nil {
		return "", fmt.Errorf("read output: %w", err)
	}
	return string(data), nil
}
