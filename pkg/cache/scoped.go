package cache

// ScopedKeyer wraps a Keyer with a prefix so that callers sharing one
// backend keep separate namespaces. The HTTP API scopes its entries this
// way when it shares a Redis instance with batch runs.
//
// Example usage:
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ProjectionKey generates a prefixed projection key.
func (k *ScopedKeyer) ProjectionKey(graphHash string) string {
	return k.prefix + k.inner.ProjectionKey(graphHash)
}

// AnalysisKey generates a prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(graphHash, exampleHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(graphHash, exampleHash, opts)
}
