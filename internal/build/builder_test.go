package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vcat/internal/digest"
	"vcat/internal/manifest"
	"vcat/internal/store"
	"vcat/internal/testsupport"
)

const tenDigitsDigest = "84d89877f0d4041efb6bf91a16f0248f2fd573e6af05c19f96bedb9f882f7882"

func testOptions() Options {
	return Options{
		CreatedBy:          "ci@example.com",
		MediaPrefix:        "media/",
		ManifestPrefix:     "manifests/",
		CatalogKey:         manifest.CatalogObjectName,
		CatalogName:        "test vector catalog",
		CatalogDescription: "Catalog of media test vectors",
		Concurrency:        4,
	}
}

func TestBuildVideoManifest(t *testing.T) {
	st := store.NewMemory("")
	if err := st.Put(context.Background(), "media/clip-fd0.mp4", strings.NewReader("0123456789"), "video/mp4"); err != nil {
		t.Fatalf("put: %v", err)
	}

	builder := New(st, testsupport.AV1Prober(), testOptions())
	m, err := builder.BuildVideoManifest(context.Background(), "media/clip-fd0.mp4")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := m.Header.Validate(); err != nil {
		t.Fatalf("header invalid: %v", err)
	}
	if m.Header.Name != "av1-1920X1080p30-fd0" {
		t.Fatalf("unexpected title %q", m.Header.Name)
	}
	if m.Header.CreatedBy != "ci@example.com" {
		t.Fatalf("unexpected created_by %q", m.Header.CreatedBy)
	}
	wantDescription := "VCAT test asset: video/av1, 1920X1080, 30fps, 120000ms"
	if m.Header.Description != wantDescription {
		t.Fatalf("description = %q, want %q", m.Header.Description, wantDescription)
	}

	asset := m.MediaAsset
	if asset.Name != "media/clip-fd0.mp4" {
		t.Fatalf("unexpected asset name %q", asset.Name)
	}
	if asset.URL != st.PublicURL("media/clip-fd0.mp4") {
		t.Fatalf("unexpected asset URL %q", asset.URL)
	}
	if asset.Checksum != tenDigitsDigest {
		t.Fatalf("checksum = %q, want %q", asset.Checksum, tenDigitsDigest)
	}
	if asset.LengthBytes != 10 {
		t.Fatalf("length = %d, want 10", asset.LengthBytes)
	}
	if asset.VideoMimeType != "video/av1" {
		t.Fatalf("unexpected mime type %q", asset.VideoMimeType)
	}
}

func TestBuildVideoManifestUnknownCodec(t *testing.T) {
	st := store.NewMemory("")
	if err := st.Put(context.Background(), "media/mystery-fd1.bin", strings.NewReader("xx"), "application/octet-stream"); err != nil {
		t.Fatalf("put: %v", err)
	}

	builder := New(st, testsupport.UnknownProber(), testOptions())
	m, err := builder.BuildVideoManifest(context.Background(), "media/mystery-fd1.bin")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Unknown codecs fall back to the raw filename, keeping the variant tag.
	if m.Header.Name != "mystery-fd1.bin-fd1" {
		t.Fatalf("unexpected fallback title %q", m.Header.Name)
	}
	if m.MediaAsset.VideoMimeType != manifest.Unknown {
		t.Fatalf("unexpected mime type %q", m.MediaAsset.VideoMimeType)
	}
	data, err := manifest.Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), `"duration_ms": "unknown"`) {
		t.Fatalf("expected unknown duration marker in %s", data)
	}
}

func TestBuildVideoManifestMissingObject(t *testing.T) {
	builder := New(store.NewMemory(""), testsupport.AV1Prober(), testOptions())
	_, err := builder.BuildVideoManifest(context.Background(), "media/absent.mp4")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// failingStore fails Get for one key so batch isolation can be observed.
type failingStore struct {
	store.Store
	failKey string
}

func (f *failingStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == f.failKey {
		return nil, errors.New("transient read failure")
	}
	return f.Store.Get(ctx, key)
}

func TestBuildVideosIsolatesFailures(t *testing.T) {
	mem := store.NewMemory("")
	for _, key := range []string{"media/a-fd0.mp4", "media/b-fd1.mp4", "media/c-fd2.mp4"} {
		if err := mem.Put(context.Background(), key, strings.NewReader("0123456789"), "video/mp4"); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	st := &failingStore{Store: mem, failKey: "media/b-fd1.mp4"}

	builder := New(st, testsupport.AV1Prober(), testOptions())
	summary, err := builder.BuildVideos(context.Background())
	if err != nil {
		t.Fatalf("build videos: %v", err)
	}

	built, skipped, failed := summary.Counts()
	if built != 2 || skipped != 0 || failed != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/0/1", built, skipped, failed)
	}

	// Outcomes follow listing order regardless of worker scheduling.
	wantKeys := []string{"media/a-fd0.mp4", "media/b-fd1.mp4", "media/c-fd2.mp4"}
	for i, want := range wantKeys {
		if summary.Outcomes[i].Key != want {
			t.Fatalf("outcome %d key = %q, want %q", i, summary.Outcomes[i].Key, want)
		}
	}
	if summary.Outcomes[1].Err == nil {
		t.Fatal("expected failure recorded for media/b-fd1.mp4")
	}
	if mem.Object("manifests/a-fd0.mp4_video_manifest.json") == nil {
		t.Fatal("expected manifest for a-fd0")
	}
	if mem.Object("manifests/b-fd1.mp4_video_manifest.json") != nil {
		t.Fatal("manifest published for failed media file")
	}
	if mem.Object("manifests/c-fd2.mp4_video_manifest.json") == nil {
		t.Fatal("expected manifest for c-fd2")
	}
}

func TestBuildPlaylists(t *testing.T) {
	mem := store.NewMemory("")
	ctx := context.Background()
	if err := mem.Put(ctx, "media/a-fd0.mp4", strings.NewReader("0123456789"), "video/mp4"); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Noise that should be skipped, not treated as an error.
	if err := mem.Put(ctx, "manifests/notes.json", strings.NewReader(`{"notes":true}`), "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := mem.Put(ctx, "manifests/readme.txt", strings.NewReader("hello"), "text/plain"); err != nil {
		t.Fatalf("put: %v", err)
	}

	builder := New(mem, testsupport.AV1Prober(), testOptions())
	if _, err := builder.BuildVideos(ctx); err != nil {
		t.Fatalf("build videos: %v", err)
	}
	summary, err := builder.BuildPlaylists(ctx)
	if err != nil {
		t.Fatalf("build playlists: %v", err)
	}
	built, skipped, failed := summary.Counts()
	if built != 1 || skipped != 1 || failed != 0 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/0", built, skipped, failed)
	}

	videoDoc := mem.Object("manifests/a-fd0.mp4_video_manifest.json")
	if videoDoc == nil {
		t.Fatal("missing video manifest")
	}
	playlistDoc := mem.Object("manifests/av1-1920X1080p30-fd0_playlist.json")
	if playlistDoc == nil {
		t.Fatal("missing playlist manifest")
	}
	playlist, err := manifest.DecodePlaylistManifest(playlistDoc)
	if err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if playlist.Header.Name != "av1-1920X1080p30-fd0_playlist" {
		t.Fatalf("unexpected playlist name %q", playlist.Header.Name)
	}
	if len(playlist.MediaAssets) != 1 {
		t.Fatalf("expected one reference, got %d", len(playlist.MediaAssets))
	}
	ref := playlist.MediaAssets[0]
	if ref.URL != "../manifests/a-fd0.mp4_video_manifest.json" {
		t.Fatalf("unexpected reference URL %q", ref.URL)
	}
	if ref.Checksum != digest.SumBytes(videoDoc) {
		t.Fatal("reference checksum does not match encoded manifest bytes")
	}
	if ref.LengthBytes != int64(len(videoDoc)) {
		t.Fatalf("reference length = %d, want %d", ref.LengthBytes, len(videoDoc))
	}
	videoManifest, err := manifest.DecodeVideoManifest(videoDoc)
	if err != nil {
		t.Fatalf("decode video manifest: %v", err)
	}
	if ref.UUID != videoManifest.Header.UUID {
		t.Fatal("reference UUID does not match child header")
	}
}

func TestBuildCatalogDocument(t *testing.T) {
	mem := store.NewMemory("")
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("media/clip%d-fd0.mp4", i)
		if err := mem.Put(ctx, key, strings.NewReader(fmt.Sprintf("payload-%d", i)), "video/mp4"); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	builder := New(mem, testsupport.UnknownProber(), testOptions())
	if _, err := builder.BuildVideos(ctx); err != nil {
		t.Fatalf("build videos: %v", err)
	}
	if _, err := builder.BuildPlaylists(ctx); err != nil {
		t.Fatalf("build playlists: %v", err)
	}
	catalog, summary, err := builder.BuildCatalogDocument(ctx)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if _, _, failed := summary.Counts(); failed != 0 {
		t.Fatalf("unexpected failures: %+v", summary.Outcomes)
	}

	if catalog.CatalogVersion != manifest.CatalogSchemaVersion {
		t.Fatalf("catalog version = %d", catalog.CatalogVersion)
	}
	if len(catalog.Playlists) != 3 {
		t.Fatalf("expected 3 playlist entries, got %d", len(catalog.Playlists))
	}
	for i := 1; i < len(catalog.Playlists); i++ {
		if catalog.Playlists[i-1].URL >= catalog.Playlists[i].URL {
			t.Fatalf("catalog entries out of listing order: %q then %q",
				catalog.Playlists[i-1].URL, catalog.Playlists[i].URL)
		}
	}
	for _, entry := range catalog.Playlists {
		if !strings.HasPrefix(entry.URL, "manifests/") {
			t.Fatalf("catalog entry URL %q should be relative to the store root", entry.URL)
		}
	}

	published := mem.Object(manifest.CatalogObjectName)
	if published == nil {
		t.Fatal("catalog not published")
	}
	if err := manifest.CheckCatalogSentinel(published); err != nil {
		t.Fatalf("published catalog fails sentinel check: %v", err)
	}
	if manifest.DetectKind(published) != manifest.KindCatalog {
		t.Fatal("published catalog not detected as catalog")
	}
}

func TestBuildCatalogDocumentWarnsOnSkippedDocuments(t *testing.T) {
	mem := store.NewMemory("")
	ctx := context.Background()
	if err := mem.Put(ctx, "media/a-fd0.mp4", strings.NewReader("0123456789"), "video/mp4"); err != nil {
		t.Fatalf("put: %v", err)
	}

	logger, sink := testsupport.NewLogSink()
	opts := testOptions()
	opts.Logger = logger
	builder := New(mem, testsupport.AV1Prober(), opts)
	if _, err := builder.BuildVideos(ctx); err != nil {
		t.Fatalf("build videos: %v", err)
	}
	if _, err := builder.BuildPlaylists(ctx); err != nil {
		t.Fatalf("build playlists: %v", err)
	}

	// The video manifest left under the prefix is not a playlist; the
	// catalog build skips it and says so.
	_, summary, err := builder.BuildCatalogDocument(ctx)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if _, skipped, failed := summary.Counts(); skipped != 1 || failed != 0 {
		t.Fatalf("counts skipped/failed = %d/%d, want 1/0", skipped, failed)
	}
	if !sink.Contains("skipping non-playlist manifest") {
		t.Fatalf("missing skip warning, got %v", sink.Messages())
	}
}

func TestBuildVideosLocalMirror(t *testing.T) {
	mem := store.NewMemory("")
	ctx := context.Background()
	if err := mem.Put(ctx, "media/a-fd0.mp4", strings.NewReader("0123456789"), "video/mp4"); err != nil {
		t.Fatalf("put: %v", err)
	}

	opts := testOptions()
	opts.LocalDir = t.TempDir()
	builder := New(mem, testsupport.AV1Prober(), opts)
	if _, err := builder.BuildVideos(ctx); err != nil {
		t.Fatalf("build videos: %v", err)
	}

	mirrored, err := os.ReadFile(filepath.Join(opts.LocalDir, "a-fd0.mp4_video_manifest.json"))
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	stored := mem.Object("manifests/a-fd0.mp4_video_manifest.json")
	if string(mirrored) != string(stored) {
		t.Fatal("mirrored document differs from stored document")
	}
}

func TestRunPoolCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int
	runPool(ctx, 100, 4, func(int) { ran++ })
	if ran != 0 {
		t.Fatalf("expected no dispatch after cancellation, ran %d", ran)
	}
}
