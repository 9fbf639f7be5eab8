package vpype

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/vpypenode/pkg/errors"
)

// ToolNotFoundError is returned when the executable cannot be located at all.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s executable not found. Please ensure it is installed and in your PATH.", e.Tool)
}

func (e *ToolNotFoundError) Unwrap() error     { return e.Err }
func (e *ToolNotFoundError) Code() errors.Code { return errors.ErrCodeToolNotFound }

// ExternalToolError is returned when the process exits with a nonzero status.
// Stderr is kept verbatim.
type ExternalToolError struct {
	Command  []string // full argv, executable first
	ExitCode int
	Stderr   string
}

func (e *ExternalToolError) Error() string {
	name := "process"
	if len(e.Command) > 0 {
		name = filepath.Base(e.Command[0])
	}
	return fmt.Sprintf("%s execution failed (exit code %d).\nCommand: %s\nError: %s",
		name, e.ExitCode, strings.Join(e.Command, " "), e.Stderr)
}

func (e *ExternalToolError) Code() errors.Code { return errors.ErrCodeExternalTool }

// OutputMissingError is returned when the process claims success but the
// expected output file does not exist.
type OutputMissingError struct {
	Path     string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *OutputMissingError) Error() string {
	return fmt.Sprintf("vpype did not generate the output file %s (exit code %d)\nstdout: %s\nstderr: %s",
		filepath.Base(e.Path), e.ExitCode, e.Stdout, e.Stderr)
}

func (e *OutputMissingError) Code() errors.Code { return errors.ErrCodeOutputMissing }

// ScriptImportError is returned by script-based adapters when the vpype
// library is not importable by the interpreter running the script.
type ScriptImportError struct {
	Interpreter string
	Stderr      string
}

func (e *ScriptImportError) Error() string {
	msg := fmt.Sprintf("vpype is not importable by %s. Install it into that interpreter (%s -m pip install vpype) or point python.bin at one that has it.",
		e.Interpreter, e.Interpreter)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *ScriptImportError) Code() errors.Code { return errors.ErrCodeScriptImport }
