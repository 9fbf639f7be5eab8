// Package pipeline runs registered nodes on behalf of a host.
//
// The CLI, the batch command and the HTTP server all go through [Runner] so
// they share one behavior: look the node up, resolve raw params against its
// schema, consult the result cache, run the node and report timing.
//
//	runner := pipeline.NewRunner(registry, cache.NewNullCache(), nil, logger)
//	res, err := runner.Run(ctx, pipeline.Request{
//	    Node:   "VPypeProcessor",
//	    Params: map[string]any{"svg_input": "drawing.svg", "rotation": 0},
//	})
//	fmt.Print(res.Output)
//
// The cache is opt-in; with the default [cache.NullCache] every request runs
// the tool and nothing outlives the call.
package pipeline

import (
	"time"
)

// Request names a node and its raw, loosely typed parameters.
type Request struct {
	Node    string         `json:"node"`
	Params  map[string]any `json:"params"`
	NoCache bool           `json:"no_cache,omitempty"` // skip cache lookup and store
	// ContentOnly treats document params as literal content, never as
	// paths on the host. Set by network-facing hosts.
	ContentOnly bool `json:"-"`
}

// Result is the single output of a node run.
type Result struct {
	Node       string        `json:"node"`
	Output     string        `json:"output"`
	ReturnName string        `json:"return_name"`
	Cached     bool          `json:"cached"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

// Stats are aggregated over several runs, e.g. by the batch command.
type Stats struct {
	Runs     int
	Cached   int
	Failed   int
	Duration time.Duration
}

// Add records one run outcome.
func (s *Stats) Add(res *Result, err error) {
	s.Runs++
	if err != nil {
		s.Failed++
		return
	}
	if res.Cached {
		s.Cached++
	}
	s.Duration += res.Duration
}
