package manifest

import (
	"encoding/json"
	"strings"
	"testing"
)

func testHeader(name string) Header {
	return NewHeader(name, "test vector for "+name, "RoncaTech, LLC")
}

func testPlaylistAsset(name string) PlaylistAsset {
	header := testHeader(name)
	return PlaylistAsset{
		Name:        name,
		URL:         "manifests/" + name + ".json",
		Checksum:    strings.Repeat("ab", 32),
		LengthBytes: 128,
		UUID:        header.UUID,
		Description: header.Description,
	}
}

func TestNewHeaderGeneratesIdentity(t *testing.T) {
	first := NewHeader("av1-1920X1080p30", "desc", "tester")
	second := NewHeader("av1-1920X1080p30", "desc", "tester")

	if err := first.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if first.UUID == second.UUID {
		t.Fatal("headers must not share UUIDs")
	}
	if first.CreatedAt == "" {
		t.Fatal("created_at must be set at construction")
	}
}

func TestHeaderValidateRejectsBadUUID(t *testing.T) {
	header := testHeader("x")
	header.UUID = "not-a-uuid"
	if err := header.Validate(); err == nil {
		t.Fatal("expected invalid uuid to fail validation")
	}
}

func TestVideoAssetValidateChecksum(t *testing.T) {
	asset := VideoAsset{
		Name:        "media/clip.mp4",
		URL:         "https://example.test/media/clip.mp4",
		Checksum:    strings.Repeat("0", 64),
		LengthBytes: 10,
	}
	if err := asset.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	for _, bad := range []string{"", "abc", strings.Repeat("g", 64), strings.Repeat("A", 64)} {
		asset.Checksum = bad
		if err := asset.Validate(); err == nil {
			t.Fatalf("checksum %q should fail validation", bad)
		}
	}
}

func TestUnknownFieldsRoundTrip(t *testing.T) {
	asset := VideoAsset{
		Name:          "media/clip.mp4",
		URL:           "https://example.test/media/clip.mp4",
		Checksum:      strings.Repeat("1", 64),
		LengthBytes:   10,
		VideoMimeType: Unknown,
		DurationMS:    UnknownDuration(),
		ResolutionXY:  Unknown,
		FrameRate:     UnknownFrameRate(),
	}

	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"duration_ms": "unknown"`, `"frame_rate": "unknown"`, `"resolution_x_y": "unknown"`} {
		if !strings.Contains(string(data), strings.ReplaceAll(want, ": ", ":")) {
			t.Fatalf("serialized asset missing %s: %s", want, data)
		}
	}

	var decoded VideoAsset
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, known := decoded.DurationMS.MS(); known {
		t.Fatal("duration must stay unknown after round trip")
	}
	if _, known := decoded.FrameRate.Value(); known {
		t.Fatal("frame rate must stay unknown after round trip")
	}
	if err := decoded.Validate(); err != nil {
		t.Fatalf("unknown probe data must not be a structural error: %v", err)
	}
}

func TestKnownFieldsRoundTrip(t *testing.T) {
	asset := VideoAsset{
		Name:          "media/clip.mp4",
		URL:           "https://example.test/media/clip.mp4",
		Checksum:      strings.Repeat("2", 64),
		LengthBytes:   10,
		VideoMimeType: "video/av1",
		DurationMS:    DurationMS(63400),
		ResolutionXY:  "1920X1080",
		FrameRate:     FPS(29.97),
	}

	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded VideoAsset
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ms, known := decoded.DurationMS.MS(); !known || ms != 63400 {
		t.Fatalf("duration mismatch: %v %v", ms, known)
	}
	if fps, known := decoded.FrameRate.Value(); !known || fps != 29.97 {
		t.Fatalf("frame rate mismatch: %v %v", fps, known)
	}
}

func TestDurationTolerantParsing(t *testing.T) {
	cases := []struct {
		in    string
		known bool
		ms    int64
	}{
		{`1234`, true, 1234},
		{`"1234"`, true, 1234},
		{`"unknown"`, false, 0},
		{`""`, false, 0},
		{`null`, false, 0},
		{`1234.9`, true, 1234},
	}
	for _, tc := range cases {
		var d Duration
		if err := json.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		ms, known := d.MS()
		if known != tc.known || (known && ms != tc.ms) {
			t.Fatalf("input %s: got (%d, %v), want (%d, %v)", tc.in, ms, known, tc.ms, tc.known)
		}
	}
}

func TestEncodeIsByteStable(t *testing.T) {
	m := VideoManifest{
		Header: Header{
			Name:        "av1-1920X1080p30",
			UUID:        "8b4c1bb4-9a57-4a2f-b7b3-0f6a2b8a8e4f",
			Description: "desc",
			CreatedAt:   "2026-01-02 03:04:05",
			CreatedBy:   "tester",
		},
		MediaAsset: VideoAsset{
			Name:          "media/clip.mp4",
			URL:           "https://example.test/media/clip.mp4",
			Checksum:      strings.Repeat("3", 64),
			LengthBytes:   10,
			VideoMimeType: "video/av1",
			DurationMS:    DurationMS(1000),
			ResolutionXY:  "1920X1080",
			FrameRate:     FPS(30),
		},
	}

	first, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("canonical encoding must be byte-stable")
	}
	if !strings.HasPrefix(string(first), "{\n  \"vcat_testvector_header\"") {
		t.Fatalf("video manifest must lead with its header key: %s", first[:60])
	}
}

func TestCatalogSentinelOrdering(t *testing.T) {
	catalog := Catalog{
		CatalogVersion: CatalogSchemaVersion,
		Header:         testHeader("VCAT Demo Test Assets"),
		Playlists:      []PlaylistAsset{testPlaylistAsset("av1-1920X1080p30_playlist")},
	}

	data, err := Encode(catalog)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := CheckCatalogSentinel(data); err != nil {
		t.Fatalf("encoded catalog must satisfy the sentinel invariant: %v", err)
	}

	decoded, err := DecodeCatalog(data)
	if err != nil {
		t.Fatalf("DecodeCatalog: %v", err)
	}
	if len(decoded.Playlists) != 1 {
		t.Fatalf("expected 1 playlist entry, got %d", len(decoded.Playlists))
	}
}

func TestCheckCatalogSentinelRejectsWrongFirstKey(t *testing.T) {
	cases := map[string]string{
		"header first":  `{"vcat_testvector_header": {}, "catalog_version": 1, "playlists": []}`,
		"not an object": `[1, 2, 3]`,
		"empty object":  `{}`,
		"invalid json":  `{`,
	}
	for name, doc := range cases {
		if err := CheckCatalogSentinel([]byte(doc)); err == nil {
			t.Fatalf("%s: expected structural error", name)
		}
	}
}

func TestDecodeCatalogRejectsUnsupportedVersion(t *testing.T) {
	catalog := Catalog{
		CatalogVersion: 99,
		Header:         testHeader("future"),
	}
	data, err := Encode(catalog)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := DecodeCatalog(data); err == nil {
		t.Fatal("expected unsupported version to be rejected")
	}
}

func TestPlaylistOrderPreserved(t *testing.T) {
	m := PlaylistManifest{
		Header: testHeader("ordered_playlist"),
		MediaAssets: []PlaylistAsset{
			testPlaylistAsset("c"),
			testPlaylistAsset("a"),
			testPlaylistAsset("b"),
		},
	}

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodePlaylistManifest(data)
	if err != nil {
		t.Fatalf("DecodePlaylistManifest: %v", err)
	}
	got := make([]string, 0, len(decoded.MediaAssets))
	for _, asset := range decoded.MediaAssets {
		got = append(got, asset.Name)
	}
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("order not preserved: %v", got)
	}
}
