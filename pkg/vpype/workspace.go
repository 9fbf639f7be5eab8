package vpype

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/vpypenode/pkg/node"
)

// Workspace is a temporary directory exclusively owned by one invocation.
// Close removes it together with everything written inside.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh temporary directory named after prefix.
func NewWorkspace(prefix string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Path returns the absolute path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// WriteFile writes data to name inside the workspace and returns its path.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// Close removes the workspace. It is safe to call more than once.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.Dir)
}

// Materialize places input at dst.
//
// If input names an existing regular file it is copied; otherwise input is
// taken as document content and written verbatim as UTF-8. The document is
// not validated here; vpype reports malformed input when it reads the file.
func Materialize(input, dst string) error {
	if isFile(input) {
		return copyFile(input, dst)
	}
	return writeContent(input, dst)
}

// MaterializeFor is Materialize for a run context. When ctx is marked with
// node.WithContentOnly the input is always written as content.
func MaterializeFor(ctx context.Context, input, dst string) error {
	if node.ContentOnly(ctx) {
		return writeContent(input, dst)
	}
	return Materialize(input, dst)
}

func writeContent(input, dst string) error {
	if err := os.WriteFile(dst, []byte(input), 0644); err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

// isFile reports whether s is the path of an existing regular file.
// Document content fails the stat (too long, or no such file) and is
// treated as content.
func isFile(s string) bool {
	if s == "" {
		return false
	}
	info, err := os.Stat(s)
	return err == nil && info.Mode().IsRegular()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create input copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy input: %w", err)
	}
	return out.Close()
}
