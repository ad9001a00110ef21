package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Memory implements Store over an in-process map. It backs tests and dry
// runs; the mutex makes it safe for the same concurrent reuse the real
// backends support.
type Memory struct {
	mu            sync.RWMutex
	objects       map[string][]byte
	publicBaseURL string
}

// NewMemory constructs an empty in-memory store. publicBaseURL defaults to
// a reserved test host when empty.
func NewMemory(publicBaseURL string) *Memory {
	if publicBaseURL == "" {
		publicBaseURL = "https://vcat.example.test"
	}
	return &Memory{
		objects:       make(map[string][]byte),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// List returns the keys under prefix in lexical order.
func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Get returns a reader over the stored bytes.
func (m *Memory) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Put stores the object, overwriting any previous content.
func (m *Memory) Put(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return nil
}

// Head reports the stored object's size.
func (m *Memory) Head(_ context.Context, key string) (ObjectInfo, error) {
	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return ObjectInfo{}, fmt.Errorf("head %q: %w", key, ErrNotFound)
	}
	return ObjectInfo{Key: key, LengthBytes: int64(len(data))}, nil
}

// PublicURL joins the configured base URL.
func (m *Memory) PublicURL(key string) string {
	return m.publicBaseURL + "/" + key
}

// Delete removes an object. Tests use it to simulate objects vanishing
// between build and verify.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
}

// Object returns a copy of the stored bytes, or nil when absent.
func (m *Memory) Object(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil
	}
	return append([]byte(nil), data...)
}
