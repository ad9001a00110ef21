package manifest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CatalogSchemaVersion is the catalog schema this tool reads and writes.
// The serialized catalog carries it as its first JSON key so consumers can
// reject unknown schemas before trusting the rest of the document.
const CatalogSchemaVersion = 1

// TimeLayout is the created_at timestamp format carried in headers.
const TimeLayout = "2006-01-02 15:04:05"

// checksumHexLen is the length of a hex-encoded SHA-256 digest.
const checksumHexLen = 64

// Header identifies a manifest or catalog. The UUID and creation time are
// fixed at construction and never change afterwards.
type Header struct {
	Name        string `json:"name"`
	UUID        string `json:"uuid"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	CreatedBy   string `json:"created_by"`
}

// NewHeader constructs a header with a fresh UUIDv4 and the current time.
func NewHeader(name, description, createdBy string) Header {
	return Header{
		Name:        name,
		UUID:        uuid.NewString(),
		Description: description,
		CreatedAt:   time.Now().UTC().Format(TimeLayout),
		CreatedBy:   createdBy,
	}
}

// Validate checks the header's required fields.
func (h Header) Validate() error {
	if h.Name == "" {
		return errors.New("header: name is required")
	}
	if _, err := uuid.Parse(h.UUID); err != nil {
		return fmt.Errorf("header %q: invalid uuid %q", h.Name, h.UUID)
	}
	return nil
}

// VideoAsset describes one media object: its location, content digest, and
// probe-derived characteristics. Probe fields degrade to "unknown" when the
// prober could not determine them.
type VideoAsset struct {
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	Checksum      string    `json:"checksum"`
	LengthBytes   int64     `json:"length_bytes"`
	VideoMimeType string    `json:"video_mime_type"`
	DurationMS    Duration  `json:"duration_ms"`
	ResolutionXY  string    `json:"resolution_x_y"`
	FrameRate     FrameRate `json:"frame_rate"`
}

// Validate checks the asset's required fields. Unknown probe values are
// valid; a missing checksum or URL is not.
func (a VideoAsset) Validate() error {
	if a.URL == "" {
		return fmt.Errorf("video asset %q: url is required", a.Name)
	}
	if err := validateChecksum(a.Checksum); err != nil {
		return fmt.Errorf("video asset %q: %w", a.Name, err)
	}
	if a.LengthBytes < 0 {
		return fmt.Errorf("video asset %q: negative length_bytes", a.Name)
	}
	return nil
}

// PlaylistAsset is a reference record: it denotes the manifest with the
// given uuid, expected at url, whose canonical serialized form digests to
// checksum. The uuid and description are copied from the referenced
// manifest's header.
type PlaylistAsset struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Checksum    string `json:"checksum"`
	LengthBytes int64  `json:"length_bytes"`
	UUID        string `json:"uuid"`
	Description string `json:"description"`
}

// Validate checks the reference record's required fields.
func (a PlaylistAsset) Validate() error {
	if a.URL == "" {
		return fmt.Errorf("playlist asset %q: url is required", a.Name)
	}
	if err := validateChecksum(a.Checksum); err != nil {
		return fmt.Errorf("playlist asset %q: %w", a.Name, err)
	}
	if a.LengthBytes < 0 {
		return fmt.Errorf("playlist asset %q: negative length_bytes", a.Name)
	}
	if _, err := uuid.Parse(a.UUID); err != nil {
		return fmt.Errorf("playlist asset %q: invalid uuid %q", a.Name, a.UUID)
	}
	return nil
}

// VideoManifest is a self-contained document describing one video.
type VideoManifest struct {
	Header     Header     `json:"vcat_testvector_header"`
	MediaAsset VideoAsset `json:"media_asset"`
}

// Validate checks the manifest's structural requirements.
func (m VideoManifest) Validate() error {
	if err := m.Header.Validate(); err != nil {
		return err
	}
	return m.MediaAsset.Validate()
}

// PlaylistManifest references one or more manifests by digest. Entry order
// is significant and preserved through serialization.
type PlaylistManifest struct {
	Header      Header          `json:"vcat_testvector_header"`
	MediaAssets []PlaylistAsset `json:"media_assets"`
}

// Validate checks the manifest's structural requirements.
func (m PlaylistManifest) Validate() error {
	if err := m.Header.Validate(); err != nil {
		return err
	}
	if len(m.MediaAssets) == 0 {
		return fmt.Errorf("playlist %q: media_assets is empty", m.Header.Name)
	}
	for _, asset := range m.MediaAssets {
		if err := asset.Validate(); err != nil {
			return fmt.Errorf("playlist %q: %w", m.Header.Name, err)
		}
	}
	return nil
}

// Catalog is the publication root listing every playlist manifest. The
// CatalogVersion field must stay first so the serialized document leads with
// the schema sentinel.
type Catalog struct {
	CatalogVersion int             `json:"catalog_version"`
	Header         Header          `json:"vcat_testvector_header"`
	Playlists      []PlaylistAsset `json:"playlists"`
}

// Validate checks the catalog's structural requirements, including the
// schema version.
func (c Catalog) Validate() error {
	if c.CatalogVersion != CatalogSchemaVersion {
		return fmt.Errorf("catalog: unsupported catalog_version %d (want %d)", c.CatalogVersion, CatalogSchemaVersion)
	}
	if err := c.Header.Validate(); err != nil {
		return err
	}
	for _, asset := range c.Playlists {
		if err := asset.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	return nil
}

func validateChecksum(checksum string) error {
	if len(checksum) != checksumHexLen {
		return fmt.Errorf("checksum %q is not a hex SHA-256 digest", checksum)
	}
	for _, r := range checksum {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return fmt.Errorf("checksum %q is not a hex SHA-256 digest", checksum)
		}
	}
	return nil
}
