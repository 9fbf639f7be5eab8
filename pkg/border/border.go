// Package border removes frame-like closed paths from a vector document.
//
// Unlike the other adapters it does not use vpype's command grammar. It
// writes a short Python script that imports vpype as a library and runs it
// with three positional arguments: input path, output path and threshold.
// A closed path is removed when its bounding-box area exceeds threshold
// times the document's bounding-box area; open paths are never removed.
package border

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vpypenode/pkg/vpype"
)

//go:embed remove_border.py
var script []byte

// DefaultThreshold is the default fraction of the document area above which
// a closed path counts as a border.
const DefaultThreshold = 0.9

// fallbackPython is used when no interpreter is configured and none can be
// read from the vpype launcher.
const fallbackPython = "python3"

// importFailureExit is the exit status the script reserves for a missing vpype.
const importFailureExit = 1

// Report summarizes one run of the script.
type Report struct {
	Removed int `json:"removed"`
	Kept    int `json:"kept"`
	Layers  int `json:"layers"`
}

// Remover runs the border-removal script.
type Remover struct {
	// Python is the interpreter. Empty means: the interpreter vpype is
	// installed into (read from the launcher's shebang), else python3.
	Python string
	// VpypeBin locates the vpype launcher for interpreter discovery.
	VpypeBin string
	Logger   *log.Logger
}

// New creates a Remover. A nil logger discards output.
func New(python, vpypeBin string, logger *log.Logger) *Remover {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if vpypeBin == "" {
		vpypeBin = vpype.DefaultBin
	}
	return &Remover{Python: python, VpypeBin: vpypeBin, Logger: logger}
}

// Interpreter returns the Python executable the script will run under.
func (r *Remover) Interpreter() string {
	if r.Python != "" {
		return r.Python
	}
	if py := launcherInterpreter(r.VpypeBin); py != "" {
		return py
	}
	return fallbackPython
}

// Args returns the interpreter argv for the given paths, without the
// interpreter itself.
func Args(scriptPath, in, out string, threshold float64) []string {
	return []string{scriptPath, in, out, strconv.FormatFloat(threshold, 'f', -1, 64)}
}

// Remove strips border paths from input (a path or SVG content) and returns
// the resulting SVG document.
//
// Exit status 1 from the script is reported as vpype.ScriptImportError; any
// other failure as the usual vpype error kinds.
func (r *Remover) Remove(ctx context.Context, input string, threshold float64) (string, Report, error) {
	ws, err := vpype.NewWorkspace("vpypenode-border")
	if err != nil {
		return "", Report{}, err
	}
	defer ws.Close()

	in := ws.Path("input.svg")
	out := ws.Path("output.svg")
	if err := vpype.MaterializeFor(ctx, input, in); err != nil {
		return "", Report{}, err
	}
	scriptPath, err := ws.WriteFile("remove_border.py", script)
	if err != nil {
		return "", Report{}, err
	}

	python := r.Interpreter()
	res, err := vpype.Exec(ctx, r.Logger, python, Args(scriptPath, in, out, threshold))
	if err != nil {
		var ete *vpype.ExternalToolError
		if errors.As(err, &ete) && ete.ExitCode == importFailureExit {
			return "", Report{}, &vpype.ScriptImportError{Interpreter: python, Stderr: ete.Stderr}
		}
		return "", Report{}, err
	}

	svg, err := vpype.ReadOutput(out, res)
	if err != nil {
		return "", Report{}, err
	}

	report, err := parseReport(res.Stdout)
	if err != nil {
		r.Logger.Debug("border report unreadable", "err", err, "stdout", res.Stdout)
	}
	r.Logger.Debug("border removal", "removed", report.Removed, "kept", report.Kept, "layers", report.Layers)
	return svg, report, nil
}

// parseReport reads the last JSON line of the script's stdout. Callers
// treat a malformed report as a zero report; the output file is what matters.
func parseReport(stdout string) (Report, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	var rep Report
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &rep); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return rep, nil
}

// launcherInterpreter returns the interpreter named in the shebang of the
// vpype console script, or "" if it cannot be determined.
func launcherInterpreter(vpypeBin string) string {
	path, err := exec.LookPath(vpypeBin)
	if err != nil {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return shebangInterpreter(line)
}

// shebangInterpreter extracts a Python interpreter from a "#!" line,
// handling both "#!/path/python3" and "#!/usr/bin/env python3".
func shebangInterpreter(line string) string {
	if !strings.HasPrefix(line, "#!") {
		return ""
	}
	fields := strings.Fields(line[2:])
	if len(fields) == 0 {
		return ""
	}
	interp := fields[0]
	if filepath.Base(interp) == "env" {
		rest := fields[1:]
		for len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return ""
		}
		interp = rest[0]
	}
	if !strings.Contains(filepath.Base(interp), "python") {
		return ""
	}
	return interp
}
