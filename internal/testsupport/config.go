// Package testsupport provides shared helpers for tests across the
// module.
package testsupport

import (
	"path/filepath"
	"testing"

	"vcat/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config backed by unique temp directories per test:
// a directory store, local manifest and log dirs, console logging. It
// applies any provided options and validates the result.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Store.Backend = "dir"
	cfg.Store.Root = filepath.Join(base, "store")
	cfg.Paths.ManifestDir = filepath.Join(base, "manifests")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Catalog.CreatedBy = "test@example.com"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithBackend overrides the store backend on the test config.
func WithBackend(backend string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Store.Backend = backend
	}
}

// WithCreatedBy overrides the manifest author on the test config.
func WithCreatedBy(createdBy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.CreatedBy = createdBy
	}
}
