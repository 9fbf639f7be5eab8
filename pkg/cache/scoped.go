package cache

// ScopedKeyer prefixes every key of an inner Keyer. Shared backends use it
// to keep vpypenode entries apart from anything else in the same store.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "vpypenode:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey returns the prefixed inner key.
func (k *ScopedKeyer) ResultKey(opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(opts)
}
