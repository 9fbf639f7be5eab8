//go:build integration

package border

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/vpypenode/pkg/vpype"
)

// An open diagonal sets the 100x100 document bounding box. The outer closed
// square covers about 95% of it, the inner one about 80%.
const framedSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="100mm" height="100mm" viewBox="0 0 100 100">
  <path d="M0 0 L100 100" stroke="black" fill="none"/>
  <path d="M1 1 L98.47 1 L98.47 98.47 L1 98.47 Z" stroke="black" fill="none"/>
  <path d="M5 5 L94.44 5 L94.44 94.44 L5 94.44 Z" stroke="black" fill="none"/>
</svg>`

func TestRemoveWithVpype(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		removed   int
		kept      int
	}{
		{"default removes the 95% frame", DefaultThreshold, 1, 2},
		{"lower threshold removes both squares", 0.75, 2, 1},
		{"threshold above every square", 0.99, 0, 3},
	}

	r := New("", "", nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg, rep, err := r.Remove(context.Background(), framedSVG, tt.threshold)
			var notFound *vpype.ToolNotFoundError
			var noImport *vpype.ScriptImportError
			if errors.As(err, &notFound) || errors.As(err, &noImport) {
				t.Skipf("vpype not available: %v", err)
			}
			if err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if rep.Removed != tt.removed || rep.Kept != tt.kept {
				t.Errorf("report = %+v, want %d removed and %d kept", rep, tt.removed, tt.kept)
			}
			if !strings.Contains(svg, "<svg") {
				t.Errorf("output is not an SVG document: %.80q", svg)
			}
		})
	}
}
