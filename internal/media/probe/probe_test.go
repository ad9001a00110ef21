package probe

import (
	"context"
	"testing"

	"vcat/internal/manifest"
)

func TestMimeTypeFor(t *testing.T) {
	cases := map[string]string{
		"av1":  "video/av1",
		"AV1":  "video/av1",
		"vp9":  `video/mp4; codecs="vp09"`,
		"h264": manifest.Unknown,
		"":     manifest.Unknown,
	}
	for codec, want := range cases {
		if got := mimeTypeFor(codec); got != want {
			t.Errorf("mimeTypeFor(%q) = %q, want %q", codec, got, want)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	fps, known := parseFrameRate("30000/1001").Value()
	if !known {
		t.Fatal("expected 30000/1001 to parse")
	}
	if fps < 29.96 || fps > 29.98 {
		t.Fatalf("unexpected fps: %v", fps)
	}

	if _, known := parseFrameRate("0/0", "garbage").Value(); known {
		t.Fatal("degenerate rationals must stay unknown")
	}

	fps, known = parseFrameRate("", "24/1").Value()
	if !known || fps != 24 {
		t.Fatalf("fallback rate not used: %v %v", fps, known)
	}
}

func TestParseDuration(t *testing.T) {
	ms, known := parseDuration("63.433333").MS()
	if !known || ms != 63433 {
		t.Fatalf("unexpected duration: %d %v", ms, known)
	}

	if _, known := parseDuration("", "N/A").MS(); known {
		t.Fatal("unparsable durations must stay unknown")
	}

	ms, known = parseDuration("", "10.5").MS()
	if !known || ms != 10500 {
		t.Fatalf("container fallback not used: %d %v", ms, known)
	}
}

func TestProbeDegradesOnFailure(t *testing.T) {
	prober := FFProbe{Binary: "/nonexistent/ffprobe"}
	result := prober.Probe(context.Background(), "/also/nonexistent.mp4")

	if result.MimeType != manifest.Unknown {
		t.Fatalf("mime type should degrade to unknown, got %q", result.MimeType)
	}
	if result.Resolution != manifest.Unknown {
		t.Fatalf("resolution should degrade to unknown, got %q", result.Resolution)
	}
	if _, known := result.Duration.MS(); known {
		t.Fatal("duration should degrade to unknown")
	}
	if _, known := result.FrameRate.Value(); known {
		t.Fatal("frame rate should degrade to unknown")
	}
}

func TestFirstVideoStream(t *testing.T) {
	probed := ffprobeResult{Streams: []ffprobeStream{
		{CodecType: "audio", CodecName: "aac"},
		{CodecType: "video", CodecName: "av1", Width: 1920, Height: 1080},
		{CodecType: "video", CodecName: "vp9"},
	}}
	stream, ok := probed.firstVideoStream()
	if !ok || stream.CodecName != "av1" {
		t.Fatalf("unexpected stream: %+v ok=%v", stream, ok)
	}
}
