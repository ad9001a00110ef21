package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir implements Store over a local directory tree. Keys are
// slash-separated paths relative to the root, mirroring object-store keys,
// so the same documents can be built locally and published remotely.
type Dir struct {
	root          string
	publicBaseURL string
}

// NewDir constructs a directory-backed store rooted at root. publicBaseURL
// is the prefix recorded in manifest URLs; when empty, file URLs are
// derived from the root path.
func NewDir(root, publicBaseURL string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("dir store: root is required")
	}
	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("dir store: resolve root: %w", err)
	}
	if err := os.MkdirAll(absolute, 0o755); err != nil {
		return nil, fmt.Errorf("dir store: create root: %w", err)
	}
	return &Dir{root: absolute, publicBaseURL: publicBaseURL}, nil
}

// List walks the tree and returns keys under prefix in lexical order.
func (d *Dir) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Get opens the file behind the key.
func (d *Dir) Get(_ context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(d.keyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("get %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return file, nil
}

// Put writes the file behind the key, creating parent directories as
// needed. The content type is inherent in the bytes for local files.
func (d *Dir) Put(_ context.Context, key string, body io.Reader, _ string) error {
	target := d.keyPath(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("put %q: create directory: %w", key, err)
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return fmt.Errorf("put %q: write: %w", key, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("put %q: close: %w", key, err)
	}
	return nil
}

// Head stats the file behind the key.
func (d *Dir) Head(_ context.Context, key string) (ObjectInfo, error) {
	info, err := os.Stat(d.keyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ObjectInfo{}, fmt.Errorf("head %q: %w", key, ErrNotFound)
		}
		return ObjectInfo{}, fmt.Errorf("head %q: %w", key, err)
	}
	return ObjectInfo{Key: key, LengthBytes: info.Size()}, nil
}

// PublicURL joins the configured base URL, falling back to a file URL
// under the root.
func (d *Dir) PublicURL(key string) string {
	if d.publicBaseURL != "" {
		return strings.TrimRight(d.publicBaseURL, "/") + "/" + key
	}
	return "file://" + d.root + "/" + key
}

func (d *Dir) keyPath(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}
