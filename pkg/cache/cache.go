// Package cache stores serialized analysis results keyed by content hashes.
//
// Two kinds of entries are cached:
//
//   - the full projected intersection matrix of a graph, keyed by the graph
//     hash ([Keyer.ProjectionKey])
//   - the analysis result of one example, keyed by the graph hash, the
//     example hash and the analysis options ([Keyer.AnalysisKey])
//
// Every analysis is a pure function of its key, so entries never go stale;
// TTLs only bound disk and memory use.
//
// Backends: [FileCache] for the CLI, [RedisCache] for shared use by the
// HTTP API, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLProjection = 30 * 24 * time.Hour
	TTLAnalysis   = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiration.
// A miss is reported as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer builds cache keys. Implementations must be deterministic: the same
// inputs always map to the same key.
type Keyer interface {
	// ProjectionKey returns the key of the full projected matrix of a graph.
	ProjectionKey(graphHash string) string

	// AnalysisKey returns the key of one example's analysis result.
	AnalysisKey(graphHash, exampleHash string, opts AnalysisKeyOpts) string
}

// AnalysisKeyOpts are the analysis options that change the cached result.
type AnalysisKeyOpts struct {
	Verify bool `json:"verify,omitempty"`
}

// DefaultKeyer produces "projection:<sha256>" and "analysis:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ProjectionKey implements Keyer.
func (DefaultKeyer) ProjectionKey(graphHash string) string {
	return hashKey("projection", graphHash)
}

// AnalysisKey implements Keyer.
func (DefaultKeyer) AnalysisKey(graphHash, exampleHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", graphHash, exampleHash, opts)
}
