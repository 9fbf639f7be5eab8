package vpype

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perrors "github.com/matzehuels/vpypenode/pkg/errors"
	"github.com/matzehuels/vpypenode/pkg/vpype/vpypetest"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0L10 10"/></svg>`

func buildPlain(_ *Workspace, in, out string) ([]string, error) {
	return Build(Options{Sort: true}, in, out), nil
}

func TestProcessSuccess(t *testing.T) {
	tool := New(vpypetest.WriteScript(t, "vpype", vpypetest.CopyLastArg), nil)

	got, err := tool.Process(context.Background(), testSVG, "output.svg", buildPlain)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got != testSVG {
		t.Errorf("Process() = %q, want input echoed back", got)
	}
}

func TestProcessNonzeroExit(t *testing.T) {
	tool := New(vpypetest.WriteScript(t, "vpype", `echo "Error: unknown command 'occult'" >&2
exit 2
`), nil)

	_, err := tool.Process(context.Background(), testSVG, "output.svg", buildPlain)
	var ete *ExternalToolError
	if !errors.As(err, &ete) {
		t.Fatalf("expected ExternalToolError, got %T: %v", err, err)
	}
	if ete.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", ete.ExitCode)
	}
	if !strings.Contains(err.Error(), "Error: unknown command 'occult'") {
		t.Errorf("message should embed stderr verbatim: %v", err)
	}
	if !strings.Contains(err.Error(), "Command: ") || !strings.Contains(err.Error(), "linesort") {
		t.Errorf("message should embed the command: %v", err)
	}
	if !perrors.Is(err, perrors.ErrCodeExternalTool) {
		t.Errorf("code = %q", perrors.GetCode(err))
	}
}

func TestProcessOutputMissing(t *testing.T) {
	tool := New(vpypetest.WriteScript(t, "vpype", `echo "processed 0 layers"
echo "warning: empty document" >&2
exit 0
`), nil)

	_, err := tool.Process(context.Background(), testSVG, "output.svg", buildPlain)
	var ome *OutputMissingError
	if !errors.As(err, &ome) {
		t.Fatalf("expected OutputMissingError, got %T: %v", err, err)
	}
	msg := err.Error()
	for _, want := range []string{"exit code 0", "processed 0 layers", "warning: empty document"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q: %s", want, msg)
		}
	}
	if !perrors.Is(err, perrors.ErrCodeOutputMissing) {
		t.Errorf("code = %q", perrors.GetCode(err))
	}
}

func TestProcessToolNotFound(t *testing.T) {
	tool := New("vpype-does-not-exist-3f9c", nil)

	_, err := tool.Process(context.Background(), testSVG, "output.svg", buildPlain)
	var tnf *ToolNotFoundError
	if !errors.As(err, &tnf) {
		t.Fatalf("expected ToolNotFoundError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected message: %v", err)
	}
	if !perrors.Is(err, perrors.ErrCodeToolNotFound) {
		t.Errorf("code = %q", perrors.GetCode(err))
	}
}

func TestProcessRemovesWorkspace(t *testing.T) {
	tests := []struct {
		name string
		tail string
	}{
		{"success", vpypetest.CopyLastArg},
		{"failure", "exit 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := filepath.Join(t.TempDir(), "workspace")
			body := `for a; do
  case "$a" in
    *input.svg) dirname "$a" > "` + marker + `" ;;
  esac
done
` + tt.tail
			tool := New(vpypetest.WriteScript(t, "vpype", body), nil)
			_, _ = tool.Process(context.Background(), testSVG, "output.svg", buildPlain)

			data, err := os.ReadFile(marker)
			if err != nil {
				t.Fatalf("fake tool did not record its workspace: %v", err)
			}
			dir := strings.TrimSpace(string(data))
			if _, err := os.Stat(dir); !os.IsNotExist(err) {
				t.Errorf("workspace %s still exists after Process", dir)
			}
		})
	}
}

func TestProcessBuildError(t *testing.T) {
	tool := New(vpypetest.WriteScript(t, "vpype", "exit 0\n"), nil)
	boom := errors.New("boom")
	_, err := tool.Process(context.Background(), testSVG, "output.svg", func(*Workspace, string, string) ([]string, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Process error = %v, want %v", err, boom)
	}
}

func TestExecCancelled(t *testing.T) {
	bin := vpypetest.WriteScript(t, "vpype", "sleep 5\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(bin, nil).Run(ctx, []string{"read", "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run with cancelled context = %v, want context.Canceled", err)
	}
}

func TestExecPassesArguments(t *testing.T) {
	record := filepath.Join(t.TempDir(), "args")
	bin := vpypetest.WriteScript(t, "vpype", vpypetest.ArgsRecorder(record, "exit 0\n"))

	args := []string{"read", "in file.svg", "rotate", "90", "write", "out.svg"}
	res, err := New(bin, nil).Run(context.Background(), args)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d", res.ExitCode)
	}
	data, _ := os.ReadFile(record)
	got := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if strings.Join(got, "|") != strings.Join(args, "|") {
		t.Errorf("argv = %q, want %q", got, args)
	}
}
