package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeCatalog()
	c.normalizeWorkers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ManifestDir, err = expandPath(c.Paths.ManifestDir); err != nil {
		return fmt.Errorf("paths.manifest_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.Bucket = strings.TrimSpace(c.Store.Bucket)
	c.Store.Region = strings.TrimSpace(c.Store.Region)
	c.Store.Endpoint = strings.TrimSpace(c.Store.Endpoint)
	c.Store.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Store.PublicBaseURL), "/")
	if c.Store.Backend == "dir" {
		if expanded, err := expandPath(c.Store.Root); err == nil {
			c.Store.Root = expanded
		}
	}
}

func (c *Config) normalizeCatalog() {
	c.Catalog.MediaPrefix = normalizePrefix(c.Catalog.MediaPrefix, defaultMediaPrefix)
	c.Catalog.ManifestPrefix = normalizePrefix(c.Catalog.ManifestPrefix, defaultManifestPrefix)
	if strings.TrimSpace(c.Catalog.CatalogKey) == "" {
		c.Catalog.CatalogKey = defaultCatalogKey
	}
	if strings.TrimSpace(c.Catalog.CreatedBy) == "" {
		c.Catalog.CreatedBy = defaultCreatedBy
	}
}

func (c *Config) normalizeWorkers() {
	if c.Build.Concurrency < 1 {
		c.Build.Concurrency = defaultConcurrency
	}
	if strings.TrimSpace(c.Build.FFprobeBinary) == "" {
		c.Build.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Verify.Concurrency < 1 {
		c.Verify.Concurrency = defaultConcurrency
	}
	if c.Verify.HTTPTimeout < 1 {
		c.Verify.HTTPTimeout = defaultVerifyHTTPSecond
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizePrefix keeps prefixes slash-terminated so key joins stay
// unambiguous.
func normalizePrefix(prefix, fallback string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return fallback
	}
	prefix = strings.TrimPrefix(prefix, "/")
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
