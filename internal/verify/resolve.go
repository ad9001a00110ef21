package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"vcat/internal/store"
)

// ref is a resolved manifest reference: either a store key or an external
// HTTP URL. base is the value child references of the fetched document
// resolve against.
type ref struct {
	key  string
	url  string
	base string
}

// resolveRef maps a reference URL onto a fetch target. Absolute URLs under
// the store's public base collapse back to store keys; other absolute URLs
// stay HTTP fetches; relative URLs resolve against the referencing
// document's own location.
func (v *Verifier) resolveRef(baseKey, rawURL string) ref {
	if isAbsoluteURL(rawURL) {
		if prefix := v.store.PublicURL(""); strings.HasPrefix(rawURL, prefix) {
			key := strings.TrimPrefix(rawURL, prefix)
			return ref{key: key, base: key}
		}
		return ref{url: rawURL, base: rawURL}
	}
	key := path.Clean(path.Join(path.Dir(baseKey), rawURL))
	return ref{key: key, base: key}
}

func isAbsoluteURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// fetch retrieves the reference's bytes from the store or over HTTP.
// Absent targets fail with store.ErrNotFound for both transports.
func (v *Verifier) fetch(ctx context.Context, r ref) ([]byte, error) {
	if r.key != "" {
		body, err := v.store.Get(ctx, r.key)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.key, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.url, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", r.url, store.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", r.url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.url, err)
	}
	return data, nil
}
