package pipeline

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vpypenode/pkg/cache"
	"github.com/matzehuels/vpypenode/pkg/errors"
	"github.com/matzehuels/vpypenode/pkg/node"
	"github.com/matzehuels/vpypenode/pkg/observability"
)

// cacheKeyType labels result-cache events for observability hooks.
const cacheKeyType = "result"

// Runner executes node requests with optional caching. It holds no
// per-request state and may be shared by concurrent callers.
type Runner struct {
	Registry *node.Registry
	Cache    cache.Cache
	Keyer    cache.Keyer
	TTL      time.Duration
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects cache.DefaultKeyer and a nil logger discards output.
func NewRunner(reg *node.Registry, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Registry: reg,
		Cache:    c,
		Keyer:    keyer,
		TTL:      cache.DefaultTTL,
		Logger:   logger,
	}
}

// Resolve looks up the node and resolves params against its schema.
func (r *Runner) Resolve(name string, raw map[string]any) (node.Node, node.Params, error) {
	n, err := r.Registry.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	p, err := n.Schema().Resolve(raw)
	if err != nil {
		return nil, nil, err
	}
	return n, p, nil
}

// Run executes one request.
//
// Cache failures never fail the run: a broken lookup is treated as a miss
// and a failed store is logged.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	n, p, err := r.Resolve(req.Node, req.Params)
	if err != nil {
		return nil, err
	}
	if req.ContentOnly {
		ctx = node.WithContentOnly(ctx)
	}
	info := n.Info()
	start := time.Now()
	observability.Node().OnRunStart(ctx, info.Name)

	var key string
	if !req.NoCache {
		key, err = r.cacheKey(n, p, req.ContentOnly)
		if err != nil {
			r.Logger.Warn("cache key", "node", info.Name, "err", err)
		}
	}

	if key != "" {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache lookup failed", "node", info.Name, "err", err)
		}
		if hit {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			return r.finish(ctx, info, string(data), true, start, nil)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	out, err := n.Run(ctx, p)
	if err != nil {
		return r.finish(ctx, info, "", false, start, err)
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, []byte(out), r.TTL); err != nil {
			r.Logger.Warn("cache store failed", "node", info.Name, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(out))
		}
	}
	return r.finish(ctx, info, out, false, start, nil)
}

func (r *Runner) finish(ctx context.Context, info node.Info, out string, cached bool, start time.Time, err error) (*Result, error) {
	d := time.Since(start)
	observability.Node().OnRunComplete(ctx, info.Name, cached, d, err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("node finished", "node", info.Name, "cached", cached, "bytes", len(out), "duration", d)
	return &Result{
		Node:       info.Name,
		Output:     out,
		ReturnName: info.ReturnName,
		Cached:     cached,
		Duration:   d,
		DurationMS: d.Milliseconds(),
	}, nil
}

// Plan describes what Run would execute for the request without running
// anything. Missing document inputs are filled with "<name>" placeholders.
func (r *Runner) Plan(name string, raw map[string]any) (node.Plan, error) {
	n, err := r.Registry.Lookup(name)
	if err != nil {
		return node.Plan{}, err
	}
	planner, ok := n.(node.Planner)
	if !ok {
		return node.Plan{}, errors.New(errors.ErrCodeUnsupported, "node %s cannot describe its invocation", name)
	}

	filled := make(map[string]any, len(raw))
	for k, v := range raw {
		filled[k] = v
	}
	for _, prm := range n.Schema() {
		if isDocument(prm) && filled[prm.Name] == nil {
			filled[prm.Name] = "<" + prm.Name + ">"
		}
	}

	p, err := n.Schema().Resolve(filled)
	if err != nil {
		return node.Plan{}, err
	}
	return planner.Plan(p)
}

// cacheKey derives the result key: document inputs enter as content
// digests, every other param by value, plus the executable when known.
// With contentOnly, document params are hashed as given, never read as files.
func (r *Runner) cacheKey(n node.Node, p node.Params, contentOnly bool) (string, error) {
	opts := cache.ResultKeyOpts{Node: n.Info().Name, Params: map[string]any{}}

	var digests []string
	for _, prm := range n.Schema() {
		if !isDocument(prm) {
			opts.Params[prm.Name] = p[prm.Name]
			continue
		}
		if contentOnly {
			digests = append(digests, cache.Hash([]byte(p.String(prm.Name))))
			continue
		}
		d, err := cache.HashDocument(p.String(prm.Name))
		if err != nil {
			return "", err
		}
		digests = append(digests, d)
	}
	opts.Input = strings.Join(digests, ",")

	if planner, ok := n.(node.Planner); ok {
		if plan, err := planner.Plan(p); err == nil && len(plan.Command) > 0 {
			opts.Tool = plan.Command[0]
		}
	}
	return r.Keyer.ResultKey(opts), nil
}

func isDocument(p node.Param) bool {
	return p.Type == node.TypeString && p.ForceInput
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
