package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vcat/internal/manifest"
)

// Result carries the probe-derived fields of one media file. String fields
// hold manifest.Unknown when underivable; Duration and FrameRate carry
// their own unknown markers.
type Result struct {
	MimeType   string
	Duration   manifest.Duration
	Resolution string
	FrameRate  manifest.FrameRate
}

// unknownResult is what every probe failure degrades to.
func unknownResult() Result {
	return Result{
		MimeType:   manifest.Unknown,
		Duration:   manifest.UnknownDuration(),
		Resolution: manifest.Unknown,
		FrameRate:  manifest.UnknownFrameRate(),
	}
}

// Prober extracts media metadata from a local file. Implementations never
// return an error; failures degrade individual fields to unknown.
type Prober interface {
	Probe(ctx context.Context, path string) Result
}

// FFProbe probes media files by executing ffprobe.
type FFProbe struct {
	// Binary is the ffprobe executable; empty means "ffprobe" on PATH.
	Binary string
}

// Probe runs ffprobe and maps its output onto manifest fields.
func (p FFProbe) Probe(ctx context.Context, path string) Result {
	probed, err := inspect(ctx, p.Binary, path)
	if err != nil {
		return unknownResult()
	}

	result := unknownResult()
	stream, ok := probed.firstVideoStream()
	if !ok {
		return result
	}

	result.MimeType = mimeTypeFor(stream.CodecName)
	if stream.Width > 0 && stream.Height > 0 {
		result.Resolution = fmt.Sprintf("%dX%d", stream.Width, stream.Height)
	}
	result.FrameRate = parseFrameRate(stream.RFrameRate, stream.AvgFrameRate)
	result.Duration = parseDuration(stream.Duration, probed.Format.Duration)
	return result
}

// mimeTypeFor maps ffprobe codec names onto the mime types the catalog's
// consumers key on. Codecs outside the published set stay unknown.
func mimeTypeFor(codec string) string {
	switch strings.ToLower(strings.TrimSpace(codec)) {
	case "av1":
		return "video/av1"
	case "vp9":
		return `video/mp4; codecs="vp09"`
	default:
		return manifest.Unknown
	}
}

// parseFrameRate resolves the stream frame rate, preferring r_frame_rate
// and falling back to avg_frame_rate. Values arrive as "num/den" rationals
// or plain decimals.
func parseFrameRate(rates ...string) manifest.FrameRate {
	for _, rate := range rates {
		if fps, ok := parseRational(rate); ok && fps > 0 {
			return manifest.FPS(fps)
		}
	}
	return manifest.UnknownFrameRate()
}

func parseRational(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if num, den, found := strings.Cut(value, "/"); found {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// parseDuration converts ffprobe's seconds strings to whole milliseconds,
// preferring the stream duration over the container duration.
func parseDuration(values ...string) manifest.Duration {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil || seconds < 0 {
			continue
		}
		return manifest.DurationMS(int64(seconds*1000 + 0.5))
	}
	return manifest.UnknownDuration()
}
