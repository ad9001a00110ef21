package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "s3":
		if c.Store.Bucket == "" {
			return errors.New("store.bucket must be set when store.backend is \"s3\"")
		}
		if c.Store.Region == "" && c.Store.Endpoint == "" {
			return errors.New("store.region must be set when store.backend is \"s3\"")
		}
	case "dir":
		if strings.TrimSpace(c.Store.Root) == "" {
			return errors.New("store.root must be set when store.backend is \"dir\"")
		}
	default:
		return fmt.Errorf("store.backend: unsupported value %q (use \"s3\" or \"dir\")", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.Name) == "" {
		return errors.New("catalog.name must be set")
	}
	if strings.TrimSpace(c.Catalog.CreatedBy) == "" {
		return errors.New("catalog.created_by must be set")
	}
	if c.Catalog.MediaPrefix == c.Catalog.ManifestPrefix {
		return errors.New("catalog.media_prefix and catalog.manifest_prefix must differ")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
