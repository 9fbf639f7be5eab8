// Package vpypetest provides fake executables for testing code that shells
// out to vpype or a Python interpreter.
package vpypetest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// CopyLastArg is a script body that copies the first input path ($2 for
// `read <in>`) to the last argument, the way `vpype read in ... write out`
// produces an output file.
const CopyLastArg = `for last; do :; done
for a; do
  case "$a" in
    *input.svg) in="$a" ;;
  esac
done
cp "$in" "$last"
`

// WriteScript writes an executable /bin/sh script named name into a fresh
// temp directory and returns its path. The test is skipped on Windows.
func WriteScript(t testing.TB, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake executables need /bin/sh")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
	return path
}

// ArgsRecorder returns a script body that writes each argument on its own
// line to file and then runs rest.
func ArgsRecorder(file, rest string) string {
	return `for a; do printf '%s\n' "$a" >> "` + file + `"; done
` + rest
}
