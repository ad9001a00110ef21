package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"vcat/internal/digest"
	"vcat/internal/logging"
	"vcat/internal/manifest"
	"vcat/internal/media/probe"
	"vcat/internal/store"
)

// Options configures a Builder.
type Options struct {
	CreatedBy          string
	MediaPrefix        string
	ManifestPrefix     string
	CatalogKey         string
	CatalogName        string
	CatalogDescription string
	// LocalDir, when set, receives a local copy of every document the
	// builder publishes.
	LocalDir string
	// Concurrency bounds the worker pool used by batch drivers.
	Concurrency int
	Logger      *slog.Logger
}

// Builder turns media objects and existing manifests into manifest
// documents. The store and prober are injected so the same build logic
// serves both store-backed and filesystem-backed workflows.
type Builder struct {
	store  store.Store
	prober probe.Prober
	opts   Options
	logger *slog.Logger
}

// New constructs a Builder.
func New(st store.Store, prober probe.Prober, opts Options) *Builder {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Builder{
		store:  st,
		prober: prober,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "builder"),
	}
}

// BuildVideoManifest streams the media object once, computing its digest
// while spooling it for probing, and assembles the manifest document.
// Probe failures degrade fields to unknown; they never fail the build.
func (b *Builder) BuildVideoManifest(ctx context.Context, mediaKey string) (*manifest.VideoManifest, error) {
	body, err := b.store.Get(ctx, mediaKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	spool, err := os.CreateTemp("", "vcat-media-*")
	if err != nil {
		return nil, fmt.Errorf("spool %s: %w", mediaKey, err)
	}
	spoolPath := spool.Name()
	defer os.Remove(spoolPath)

	sum, length, err := digest.Sum(io.TeeReader(body, spool))
	if closeErr := spool.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("spool %s: %w", mediaKey, closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("digest %s: %w", mediaKey, err)
	}

	probed := b.prober.Probe(ctx, spoolPath)

	title := headerTitle(mediaKey, probed)
	description := fmt.Sprintf("VCAT test asset: %s, %s, %sfps, %sms",
		probed.MimeType, probed.Resolution, probed.FrameRate, probed.Duration)
	header := manifest.NewHeader(title, description, b.opts.CreatedBy)

	asset := manifest.VideoAsset{
		Name:          mediaKey,
		URL:           b.store.PublicURL(mediaKey),
		Checksum:      sum,
		LengthBytes:   length,
		VideoMimeType: probed.MimeType,
		DurationMS:    probed.Duration,
		ResolutionXY:  probed.Resolution,
		FrameRate:     probed.FrameRate,
	}

	return &manifest.VideoManifest{Header: header, MediaAsset: asset}, nil
}

// Ref pairs a serialized child document with the URL its parent records
// for it.
type Ref struct {
	URL  string
	Data []byte
}

// BuildPlaylistManifest assembles a playlist referencing the given
// manifest documents. Reference order follows the input order exactly.
func (b *Builder) BuildPlaylistManifest(name, description string, refs []Ref) (*manifest.PlaylistManifest, error) {
	if len(refs) == 0 {
		return nil, errors.New("playlist requires at least one manifest reference")
	}
	assets, err := referenceAssets(refs)
	if err != nil {
		return nil, fmt.Errorf("playlist %q: %w", name, err)
	}
	return &manifest.PlaylistManifest{
		Header:      manifest.NewHeader(name, description, b.opts.CreatedBy),
		MediaAssets: assets,
	}, nil
}

// BuildCatalog assembles the catalog root referencing the given playlist
// documents, in input order.
func (b *Builder) BuildCatalog(refs []Ref) (*manifest.Catalog, error) {
	assets, err := referenceAssets(refs)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &manifest.Catalog{
		CatalogVersion: manifest.CatalogSchemaVersion,
		Header:         manifest.NewHeader(b.opts.CatalogName, b.opts.CatalogDescription, b.opts.CreatedBy),
		Playlists:      assets,
	}, nil
}

// referenceAssets digests each child document and copies its header
// identity into a reference record.
func referenceAssets(refs []Ref) ([]manifest.PlaylistAsset, error) {
	assets := make([]manifest.PlaylistAsset, 0, len(refs))
	for _, ref := range refs {
		if manifest.DetectKind(ref.Data) == manifest.KindUnknown {
			return nil, fmt.Errorf("reference %q is not a manifest document", ref.URL)
		}
		header, err := manifest.DecodeHeader(ref.Data)
		if err != nil {
			return nil, fmt.Errorf("reference %q: %w", ref.URL, err)
		}
		assets = append(assets, manifest.PlaylistAsset{
			Name:        header.Name,
			URL:         ref.URL,
			Checksum:    digest.SumBytes(ref.Data),
			LengthBytes: int64(len(ref.Data)),
			UUID:        header.UUID,
			Description: header.Description,
		})
	}
	return assets, nil
}
