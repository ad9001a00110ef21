package testsupport

import (
	"context"
	"strings"
	"testing"

	"vcat/internal/manifest"
	"vcat/internal/media/probe"
	"vcat/internal/store"
)

// StaticProber is a probe.Prober returning the same result for every file.
type StaticProber struct {
	Result probe.Result
}

func (p StaticProber) Probe(context.Context, string) probe.Result {
	return p.Result
}

// UnknownProber returns a prober whose every field is unknown, the same
// degradation a probe failure produces.
func UnknownProber() StaticProber {
	return StaticProber{Result: probe.Result{
		MimeType:   manifest.Unknown,
		Duration:   manifest.UnknownDuration(),
		Resolution: manifest.Unknown,
		FrameRate:  manifest.UnknownFrameRate(),
	}}
}

// AV1Prober returns a prober reporting a fixed AV1 1080p stream.
func AV1Prober() StaticProber {
	return StaticProber{Result: probe.Result{
		MimeType:   "video/av1",
		Duration:   manifest.DurationMS(120000),
		Resolution: "1920X1080",
		FrameRate:  manifest.FPS(30),
	}}
}

// SeedObjects writes the given key/content pairs into the store.
func SeedObjects(t testing.TB, st store.Store, objects map[string]string) {
	t.Helper()
	for key, content := range objects {
		if err := st.Put(context.Background(), key, strings.NewReader(content), "application/octet-stream"); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
}
