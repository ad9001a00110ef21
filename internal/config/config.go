package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store contains object-store backend configuration.
type Store struct {
	// Backend selects the storage implementation: "s3" or "dir".
	Backend string `toml:"backend"`
	Bucket  string `toml:"bucket"`
	Region  string `toml:"region"`
	// Endpoint overrides the S3 endpoint for S3-compatible stores.
	Endpoint string `toml:"endpoint"`
	// PublicBaseURL is the URL prefix recorded in published manifests.
	// Empty derives it from bucket and region.
	PublicBaseURL string `toml:"public_base_url"`
	// Root is the directory tree backing the "dir" backend.
	Root string `toml:"root"`
}

// Catalog contains the identity and layout of the published catalog.
type Catalog struct {
	Name           string `toml:"name"`
	Description    string `toml:"description"`
	CreatedBy      string `toml:"created_by"`
	CatalogKey     string `toml:"catalog_key"`
	MediaPrefix    string `toml:"media_prefix"`
	ManifestPrefix string `toml:"manifest_prefix"`
}

// Paths contains local directory configuration.
type Paths struct {
	// ManifestDir receives local copies of built manifest documents.
	ManifestDir string `toml:"manifest_dir"`
	LogDir      string `toml:"log_dir"`
}

// Build contains manifest construction settings.
type Build struct {
	// Concurrency bounds the worker pool building video manifests.
	Concurrency   int    `toml:"concurrency"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Verify contains catalog verification settings.
type Verify struct {
	// Concurrency bounds the worker pool fetching and digesting entries.
	Concurrency int `toml:"concurrency"`
	// Recursive descends from the catalog through playlists to video
	// manifest leaves.
	Recursive bool `toml:"recursive"`
	// Deep additionally fetches and digests the raw media bytes behind
	// video manifests.
	Deep bool `toml:"deep"`
	// HTTPTimeout caps, in seconds, fetches of manifest URLs that do not
	// resolve to store keys.
	HTTPTimeout int `toml:"http_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vcat.
type Config struct {
	Store   Store   `toml:"store"`
	Catalog Catalog `toml:"catalog"`
	Paths   Paths   `toml:"paths"`
	Build   Build   `toml:"build"`
	Verify  Verify  `toml:"verify"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vcat/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vcat.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ManifestDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other
// packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified
// location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
