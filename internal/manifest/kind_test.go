package manifest

import "testing"

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want Kind
	}{
		{
			name: "video manifest",
			doc:  `{"vcat_testvector_header": {"name": "x"}, "media_asset": {"video_mime_type": "video/av1"}}`,
			want: KindVideoManifest,
		},
		{
			name: "playlist manifest",
			doc:  `{"vcat_testvector_header": {"name": "x"}, "media_assets": []}`,
			want: KindPlaylistManifest,
		},
		{
			name: "catalog",
			doc:  `{"catalog_version": 1, "vcat_testvector_header": {"name": "x"}, "playlists": []}`,
			want: KindCatalog,
		},
		{
			name: "missing discriminator",
			doc:  `{"vcat_testvector_header": {"name": "x"}}`,
			want: KindUnknown,
		},
		{
			name: "missing header",
			doc:  `{"media_assets": []}`,
			want: KindUnknown,
		},
		{
			name: "asset without mime marker",
			doc:  `{"vcat_testvector_header": {"name": "x"}, "media_asset": {"name": "y"}}`,
			want: KindUnknown,
		},
		{
			name: "not json",
			doc:  `###`,
			want: KindUnknown,
		},
	}

	for _, tc := range cases {
		if got := DetectKind([]byte(tc.doc)); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDerivedFileNames(t *testing.T) {
	if got := VideoManifestFileName("media/clip-fd0.mp4"); got != "clip-fd0.mp4_video_manifest.json" {
		t.Fatalf("unexpected video manifest name: %s", got)
	}
	if got := PlaylistFileName(PlaylistNameFor("av1-1920X1080p30")); got != "av1-1920X1080p30_playlist.json" {
		t.Fatalf("unexpected playlist name: %s", got)
	}
	if !IsJSONKey("manifests/a.JSON") || IsJSONKey("media/a.mp4") {
		t.Fatal("IsJSONKey misclassified keys")
	}
}
