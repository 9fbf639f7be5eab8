package node

import (
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/vpypenode/pkg/errors"
)

// DefaultCategory is the menu category every vpype node is listed under.
const DefaultCategory = "VPype"

// Info describes how a host presents a node.
type Info struct {
	Name        string `json:"name"`         // class name, e.g. "VPypeProcessor"
	DisplayName string `json:"display_name"` // e.g. "VPype SVG Processor"
	Category    string `json:"category"`
	ReturnName  string `json:"return_name"` // name of the single string output
	Description string `json:"description,omitempty"`
}

// Node is a host-controlled plugin: a typed schema plus one entry point.
//
// Run receives params already resolved against Schema and returns a single
// string value. Implementations must be safe for concurrent calls; each call
// owns its own temporary workspace.
type Node interface {
	Info() Info
	Schema() Schema
	Run(ctx context.Context, p Params) (string, error)
}

// Plan is the dry-run description of what Run would execute.
type Plan struct {
	Command []string `json:"command"`          // argv with <input>/<output> placeholders
	Stages  []string `json:"stages"`           // pipeline stage names in execution order
	Config  string   `json:"config,omitempty"` // generated config file, if any
}

// Planner is implemented by nodes that can describe their invocation without
// running it.
type Planner interface {
	Plan(p Params) (Plan, error)
}

// Registry maps class names to nodes. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]Node)}
}

// Register adds n under its class name.
func (r *Registry) Register(n Node) error {
	name := n.Info().Name
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "node has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.nodes[name]; dup {
		return errors.New(errors.ErrCodeInvalidInput, "node %q already registered", name)
	}
	r.nodes[name] = n
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(nodes ...Node) {
	for _, n := range nodes {
		if err := r.Register(n); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the node registered under name.
func (r *Registry) Lookup(name string) (Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "unknown node %q", name)
	}
	return n, nil
}

// All returns every registered node sorted by class name.
func (r *Registry) All() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Info().Name < out[j].Info().Name })
	return out
}

// DisplayNames returns the class-name to display-name table.
func (r *Registry) DisplayNames() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.nodes))
	for name, n := range r.nodes {
		out[name] = n.Info().DisplayName
	}
	return out
}
