package manifest

import (
	"path"
	"strings"
)

// CatalogObjectName is the fixed name of the published catalog document.
const CatalogObjectName = "vcat_testvector_playlist_catalog.json"

// PlaylistNameSuffix distinguishes playlist header names derived from a
// video manifest.
const PlaylistNameSuffix = "_playlist"

// VideoManifestFileName derives the manifest filename for a media object
// key: the key's base name plus the video-manifest suffix.
func VideoManifestFileName(mediaKey string) string {
	return path.Base(mediaKey) + "_video_manifest.json"
}

// PlaylistFileName derives the document filename for a playlist header
// name.
func PlaylistFileName(name string) string {
	return name + ".json"
}

// PlaylistNameFor derives the header name of the one-entry playlist built
// from the named video manifest.
func PlaylistNameFor(videoName string) string {
	return videoName + PlaylistNameSuffix
}

// IsJSONKey reports whether a store key plausibly holds a manifest
// document. Kind filtering still happens by content sniffing; this only
// avoids fetching media binaries while scanning a manifest prefix.
func IsJSONKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ".json")
}
