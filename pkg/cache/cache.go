// Package cache stores pipeline results between runs.
//
// A [Cache] is a byte store with expiry. Three backends are provided:
//
//   - [FileCache] keeps entries as files, for the CLI
//   - [RedisCache] shares entries between service instances
//   - [NullCache] stores nothing, for tests and --no-cache
//
// Keys come from a [Keyer], which hashes the inputs that determine a result:
// the document bytes and the option values for a layout, the layout hash and
// the output format for an artifact. [ScopedKeyer] prefixes every key, so
// several tenants can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value byte store with per-entry expiry.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes per result kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts are the inputs besides the document that change a layout.
type LayoutKeyOpts struct {
	// OptionsHash identifies the engraving option values.
	OptionsHash string `json:"options"`
	// Strict is set when unresolved references fail the run.
	Strict bool `json:"strict,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the layout that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Boxes  bool    `json:"boxes,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(documentHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns the key of the layout of a document.
func (DefaultKeyer) LayoutKey(documentHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", documentHash, opts)
}

// ArtifactKey returns the key of one rendered output of a layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
