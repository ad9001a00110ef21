package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrStructural marks a document whose shape violates the format: missing
// required keys, wrong sentinel ordering, or unparsable JSON.
var ErrStructural = errors.New("structural error")

// ContentType is the content type manifests and catalogs are published with.
const ContentType = "application/json"

// Encode renders a document in its canonical published form: two-space
// indented JSON with keys in struct declaration order. These are the bytes
// that parents digest when referencing the document, so the output must be
// byte-stable for identical input.
func Encode(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// DecodeVideoManifest parses and structurally validates a video manifest.
func DecodeVideoManifest(data []byte) (*VideoManifest, error) {
	var m VideoManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse video manifest: %v", ErrStructural, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	return &m, nil
}

// DecodePlaylistManifest parses and structurally validates a playlist
// manifest.
func DecodePlaylistManifest(data []byte) (*PlaylistManifest, error) {
	var m PlaylistManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse playlist manifest: %v", ErrStructural, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	return &m, nil
}

// DecodeCatalog parses and structurally validates a catalog document,
// including the first-key sentinel check on the raw bytes.
func DecodeCatalog(data []byte) (*Catalog, error) {
	if err := CheckCatalogSentinel(data); err != nil {
		return nil, err
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrStructural, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	return &c, nil
}

// DecodeHeader extracts just the header from any manifest kind.
func DecodeHeader(data []byte) (Header, error) {
	var doc struct {
		Header *Header `json:"vcat_testvector_header"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Header{}, fmt.Errorf("%w: parse header: %v", ErrStructural, err)
	}
	if doc.Header == nil {
		return Header{}, fmt.Errorf("%w: missing vcat_testvector_header", ErrStructural)
	}
	if err := doc.Header.Validate(); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	return *doc.Header, nil
}

// CheckCatalogSentinel verifies that the serialized catalog's very first
// JSON key is the schema version sentinel. It operates on the raw bytes,
// before any field of the document is trusted.
func CheckCatalogSentinel(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: catalog is not valid JSON: %v", ErrStructural, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: catalog root is not a JSON object", ErrStructural)
	}

	tok, err = dec.Token()
	if err != nil {
		return fmt.Errorf("%w: catalog object is empty: %v", ErrStructural, err)
	}
	key, ok := tok.(string)
	if !ok {
		return fmt.Errorf("%w: catalog first token is not a key", ErrStructural)
	}
	if key != "catalog_version" {
		return fmt.Errorf("%w: catalog must start with catalog_version, found %q", ErrStructural, key)
	}
	return nil
}
