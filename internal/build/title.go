package build

import (
	"fmt"
	"path"
	"strings"

	"vcat/internal/media/probe"
)

// variantTags are the filename markers that disambiguate same-resolution
// encodes of the same source.
var variantTags = []string{"fd0", "fd1", "fd2"}

// headerTitle synthesizes a manifest title from probe output, e.g.
// "av1-1920X1080p30-fd1". When the codec is unknown the raw filename is
// used instead so the title still identifies the asset.
func headerTitle(mediaKey string, probed probe.Result) string {
	var base string
	mime := strings.ToLower(probed.MimeType)
	switch {
	case strings.Contains(mime, "av1"):
		base = fmt.Sprintf("av1-%sp%s", probed.Resolution, probed.FrameRate)
	case strings.Contains(mime, "vp09"):
		base = fmt.Sprintf("vp9-%sp%s", probed.Resolution, probed.FrameRate)
	default:
		base = path.Base(mediaKey)
	}
	return base + variantTag(mediaKey)
}

func variantTag(mediaKey string) string {
	for _, tag := range variantTags {
		if strings.Contains(mediaKey, tag) {
			return "-" + tag
		}
	}
	return ""
}
