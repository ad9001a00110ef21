package manifest

import "encoding/json"

// Kind classifies a serialized document by content, not by filename.
type Kind int

const (
	KindUnknown Kind = iota
	KindVideoManifest
	KindPlaylistManifest
	KindCatalog
)

func (k Kind) String() string {
	switch k {
	case KindVideoManifest:
		return "video manifest"
	case KindPlaylistManifest:
		return "playlist manifest"
	case KindCatalog:
		return "catalog"
	default:
		return "unknown"
	}
}

// DetectKind sniffs the discriminator keys of a serialized document.
// Directories hold mixed manifest kinds, so callers filter by this rather
// than by filename pattern; a document missing its discriminator is
// KindUnknown and should be skipped with a warning, not treated as an
// error.
func DetectKind(data []byte) Kind {
	var doc struct {
		CatalogVersion *int             `json:"catalog_version"`
		Header         *json.RawMessage `json:"vcat_testvector_header"`
		MediaAsset     *struct {
			VideoMimeType *string `json:"video_mime_type"`
		} `json:"media_asset"`
		MediaAssets *json.RawMessage `json:"media_assets"`
		Playlists   *json.RawMessage `json:"playlists"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return KindUnknown
	}
	if doc.Header == nil {
		return KindUnknown
	}
	switch {
	case doc.CatalogVersion != nil || doc.Playlists != nil:
		return KindCatalog
	case doc.MediaAsset != nil && doc.MediaAsset.VideoMimeType != nil:
		return KindVideoManifest
	case doc.MediaAssets != nil:
		return KindPlaylistManifest
	default:
		return KindUnknown
	}
}
