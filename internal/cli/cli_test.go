package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/vpypenode/internal/config"
	"github.com/matzehuels/vpypenode/pkg/cache"
	"github.com/matzehuels/vpypenode/pkg/errors"
	"github.com/matzehuels/vpypenode/pkg/vpype/vpypetest"
)

const drawing = `<svg xmlns="http://www.w3.org/2000/svg" width="100mm" height="100mm"><path d="M0 0 L10 10"/></svg>`

// isolate points every per-user directory at temp dirs so no real config
// or cache is touched.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

// execute runs the root command with args and stdin, returning stdout and
// stderr (which also receives log output).
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := New(&stderr, LogInfo)
	c.stdin = strings.NewReader(stdin)

	root := c.RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// fakeVpype installs a vpype stand-in that copies its input to its output
// and appends its arguments to the returned log file.
func fakeVpype(t *testing.T) (bin, argsLog string) {
	t.Helper()
	argsLog = filepath.Join(t.TempDir(), "args.log")
	return vpypetest.WriteScript(t, "vpype", vpypetest.ArgsRecorder(argsLog, vpypetest.CopyLastArg)), argsLog
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(out, "vpypenode version ") {
		t.Errorf("version output = %q", out)
	}
}

func TestNodesCommand(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "nodes")
	if err != nil {
		t.Fatalf("nodes: %v", err)
	}
	for _, want := range []string{"VPypeProcessor", "VPypeExtendedProcessor", "VPypeGCodeGenerator", "VPypeBorderRemover", "gcode_output"} {
		if !strings.Contains(out, want) {
			t.Errorf("nodes output missing %q:\n%s", want, out)
		}
	}
}

func TestSchemaCommand(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "schema", "VPypeProcessor")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	var got struct {
		Name   string `json:"name"`
		Schema []struct {
			Name string `json:"name"`
		} `json:"schema"`
		Defaults map[string]any `json:"defaults"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Name != "VPypeProcessor" || len(got.Schema) == 0 || got.Schema[0].Name != "svg_input" {
		t.Errorf("schema = %+v", got)
	}
	if _, ok := got.Defaults["svg_input"]; ok {
		t.Error("document input has no default")
	}
	if got.Defaults["rotation"] != float64(90) {
		t.Errorf("rotation default = %v", got.Defaults["rotation"])
	}

	_, _, err = execute(t, "", "schema", "Nope")
	if !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("unknown node: %v", err)
	}
}

func TestRunFromStdin(t *testing.T) {
	isolate(t)
	bin, argsLog := fakeVpype(t)

	out, _, err := execute(t, drawing, "--vpype", bin, "run", "VPypeProcessor")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != drawing {
		t.Errorf("stdout = %q, want the document back", out)
	}

	args, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Fields(string(args))
	want := []string{"read", "linemerge", "--tolerance", "0.1mm", "linesimplify", "--tolerance", "0.05mm", "linesort", "rotate", "90"}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("args %v missing %q", got, w)
		}
	}
}

func TestRunFileToFile(t *testing.T) {
	isolate(t)
	bin, argsLog := fakeVpype(t)
	dir := t.TempDir()
	in := writeFile(t, dir, "drawing.svg", drawing)
	out := filepath.Join(dir, "plot.svg")

	_, stderr, err := execute(t, "", "--vpype", bin, "run", "VPypeProcessor", "-i", in, "-o", out, "--set", "rotation=0", "--set", "merge_tolerance=0")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != drawing {
		t.Errorf("output = %q", data)
	}
	if !strings.Contains(stderr, "VPype SVG Processor finished") || !strings.Contains(stderr, "fresh") {
		t.Errorf("stderr = %q", stderr)
	}

	args, _ := os.ReadFile(argsLog)
	for _, absent := range []string{"rotate", "linemerge"} {
		if strings.Contains(string(args), absent+"\n") {
			t.Errorf("disabled stage %s still in args:\n%s", absent, args)
		}
	}
}

func TestRunErrors(t *testing.T) {
	isolate(t)
	bin, _ := fakeVpype(t)
	missing := filepath.Join(t.TempDir(), "missing.svg")

	tests := []struct {
		name  string
		stdin string
		args  []string
		code  errors.Code
	}{
		{"no node", drawing, []string{"run"}, errors.ErrCodeInvalidInput},
		{"unknown node", drawing, []string{"run", "Nope"}, errors.ErrCodeNodeNotFound},
		{"missing input file", "", []string{"run", "VPypeProcessor", "-i", missing}, errors.ErrCodeFileNotFound},
		{"empty stdin", "", []string{"run", "VPypeProcessor"}, errors.ErrCodeInvalidInput},
		{"bad set syntax", drawing, []string{"run", "VPypeProcessor", "--set", "rotation"}, errors.ErrCodeInvalidParam},
		{"unknown param", drawing, []string{"run", "VPypeProcessor", "--set", "colour=red"}, errors.ErrCodeInvalidParam},
		{"out of range", drawing, []string{"run", "VPypeProcessor", "--set", "margin=500"}, errors.ErrCodeInvalidParam},
		{"missing preset", drawing, []string{"run", "VPypeProcessor", "--preset", missing}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, append([]string{"--vpype", bin}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v (code %q), want %q", err, errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestRunToolNotFound(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, drawing, "--vpype", filepath.Join(t.TempDir(), "no-vpype"), "run", "VPypeProcessor")
	if !errors.Is(err, errors.ErrCodeToolNotFound) {
		t.Errorf("err = %v, want TOOL_NOT_FOUND", err)
	}
}

func TestRunExternalToolFailure(t *testing.T) {
	isolate(t)
	bin := vpypetest.WriteScript(t, "vpype", "echo 'could not parse SVG' >&2\nexit 2\n")
	_, stderr, err := execute(t, drawing, "--vpype", bin, "run", "VPypeProcessor")
	if !errors.Is(err, errors.ErrCodeExternalTool) {
		t.Fatalf("err = %v, want EXTERNAL_TOOL", err)
	}
	if !strings.Contains(err.Error(), "could not parse SVG") {
		t.Errorf("stderr not carried through: %v", err)
	}
	if !strings.Contains(stderr, "VPype SVG Processor failed") {
		t.Errorf("missing failure line in %q", stderr)
	}
}

func TestRunCache(t *testing.T) {
	isolate(t)
	bin, argsLog := fakeVpype(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "plot.svg")

	var stderr string
	for i := 0; i < 2; i++ {
		var err error
		_, stderr, err = execute(t, drawing, "--vpype", bin, "--cache", "run", "VPypeProcessor", "-o", out)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if !strings.Contains(stderr, "cached") {
		t.Errorf("second run not served from cache: %q", stderr)
	}
	args, _ := os.ReadFile(argsLog)
	if n := strings.Count(string(args), "read\n"); n != 1 {
		t.Errorf("vpype ran %d times, want 1", n)
	}

	_, _, err := execute(t, drawing, "--vpype", bin, "--cache", "run", "VPypeProcessor", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	args, _ = os.ReadFile(argsLog)
	if n := strings.Count(string(args), "read\n"); n != 2 {
		t.Errorf("--no-cache should run vpype, ran %d times in total", n)
	}
}

func TestConfigFile(t *testing.T) {
	isolate(t)
	bin, argsLog := fakeVpype(t)
	cfg := writeFile(t, t.TempDir(), "config.toml", "[vpype]\nbin = \""+bin+"\"\n")

	if _, _, err := execute(t, drawing, "--config", cfg, "run", "VPypeProcessor"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(argsLog); err != nil {
		t.Errorf("configured vpype was not used: %v", err)
	}

	if _, _, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "none.toml"), "nodes"); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestExplain(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "", "explain", "VPypeProcessor")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	for _, want := range []string{"vpype read <input> linemerge --tolerance 0.1mm", "write <output>", "linesort"} {
		if !strings.Contains(out, want) {
			t.Errorf("explain output missing %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, "", "explain", "VPypeGCodeGenerator", "--set", "pen_up=7")
	if err != nil {
		t.Fatalf("explain gcode: %v", err)
	}
	if !strings.Contains(out, "-c <config>") || !strings.Contains(out, "[gwrite.vpypenode]") {
		t.Errorf("gcode plan should show the config:\n%s", out)
	}

	out, _, err = execute(t, "", "explain", "VPypeProcessor", "-f", "dot")
	if err != nil {
		t.Fatalf("explain dot: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("dot output = %q", out)
	}

	_, _, err = execute(t, "", "explain", "VPypeProcessor", "-f", "pdf")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: %v", err)
	}
}

func TestShellJoin(t *testing.T) {
	got := shellJoin([]string{"vpype", "read", "<input>", "my file.svg", ""})
	want := `vpype read <input> "my file.svg" ""`
	if got != want {
		t.Errorf("shellJoin = %q, want %q", got, want)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "vpypenode") {
		t.Error("bash completion does not mention vpypenode")
	}
}

func TestNewRunnerTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"no expiry", 0},
		{"one hour", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.Config = &config.Config{Cache: config.CacheConfig{TTL: tt.ttl}}
			r, err := c.newRunner(context.Background())
			if err != nil {
				t.Fatalf("newRunner: %v", err)
			}
			if r.TTL != tt.ttl {
				t.Errorf("TTL = %s, want %s", r.TTL, tt.ttl)
			}
		})
	}
}

func TestNewKeyer(t *testing.T) {
	opts := cache.ResultKeyOpts{Node: "VPypeProcessor", Params: map[string]any{"rotation": 90.0}}
	plain := cache.NewDefaultKeyer().ResultKey(opts)

	tests := []struct {
		name  string
		cache config.CacheConfig
		want  string
	}{
		{"disabled", config.CacheConfig{}, plain},
		{"file", config.CacheConfig{Enabled: true, Dir: t.TempDir()}, plain},
		{"redis", config.CacheConfig{Enabled: true, RedisURL: "redis://localhost:6379/0"}, "vpypenode:" + plain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.Config = &config.Config{Cache: tt.cache}
			if got := c.newKeyer().ResultKey(opts); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}
}
