package vpype

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/vpypenode/pkg/node"
)

func TestWorkspaceLifecycle(t *testing.T) {
	ws, err := NewWorkspace("vpypenode-test")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}

	path, err := ws.WriteFile("config.toml", []byte("x = 1"))
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Dir(path) != ws.Dir {
		t.Errorf("WriteFile path %q not inside %q", path, ws.Dir)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Errorf("workspace should be removed, stat err = %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMaterializeContentRoundTrip(t *testing.T) {
	contents := []string{
		`<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0L10 10"/></svg>`,
		"",
		"ünïcödé ✓ \r\n trailing whitespace  \n",
		strings.Repeat("<g/>", 20000), // longer than any valid path
	}

	for i, content := range contents {
		dst := filepath.Join(t.TempDir(), "input.svg")
		if err := Materialize(content, dst); err != nil {
			t.Fatalf("case %d: Materialize: %v", i, err)
		}
		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("case %d: read back: %v", i, err)
		}
		if string(got) != content {
			t.Errorf("case %d: content not preserved byte-for-byte", i)
		}
	}
}

func TestMaterializeCopiesExistingFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "drawing.svg")
	want := "<svg><line x1='0' y1='0' x2='1' y2='1'/></svg>"
	if err := os.WriteFile(src, []byte(want), 0644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "input.svg")
	if err := Materialize(src, dst); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != want {
		t.Errorf("copied content = %q, want %q", got, want)
	}
}

func TestMaterializeDirectoryIsContent(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(t.TempDir(), "input.svg")
	if err := Materialize(dir, dst); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != dir {
		t.Errorf("directory path should be written as literal content, got %q", got)
	}
}

func TestMaterializeForContentOnly(t *testing.T) {
	src := filepath.Join(t.TempDir(), "private.svg")
	if err := os.WriteFile(src, []byte("<svg>secret</svg>"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"path resolved", context.Background(), "<svg>secret</svg>"},
		{"content only", node.WithContentOnly(context.Background()), src},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "input.svg")
			if err := MaterializeFor(tt.ctx, src, dst); err != nil {
				t.Fatalf("MaterializeFor: %v", err)
			}
			got, _ := os.ReadFile(dst)
			if string(got) != tt.want {
				t.Errorf("materialized %q, want %q", got, tt.want)
			}
		})
	}
}
