// Package cache stores node results so identical runs can skip the tool.
//
// Caching is opt-in: the default backend is [NullCache], which keeps the
// adapters stateless. [FileCache] serves the CLI, [RedisCache] lets several
// server instances share results.
//
// Keys are derived from the node name, the resolved parameters, a digest of
// the input document and the tool identity (see [Keyer]), so any change to
// what vpype would see produces a different key.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ResultKeyOpts identifies one node run.
type ResultKeyOpts struct {
	Node   string
	Params map[string]any // resolved params, without the document input
	Input  string         // Hash of the document content
	Tool   string         // executable the node runs, e.g. "vpype"
}

// Keyer derives cache keys.
type Keyer interface {
	ResultKey(opts ResultKeyOpts) string
}

// DefaultKeyer hashes every component of the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey returns "result:<node>:<sha256>". Params are marshaled with
// sorted keys, so map order does not matter.
func (DefaultKeyer) ResultKey(opts ResultKeyOpts) string {
	return hashKey("result:"+opts.Node, opts.Params, opts.Input, opts.Tool)
}
