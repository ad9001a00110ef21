package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"vcat/internal/logging"
	"vcat/internal/manifest"
)

// Outcome records one batch entry's result. Skipped entries were examined
// but intentionally not built (wrong manifest kind); failed entries carry
// the error.
type Outcome struct {
	Key         string
	ManifestKey string
	Skipped     bool
	Err         error
}

// Summary aggregates a batch run. It is always well-formed, even when the
// run was cancelled partway.
type Summary struct {
	Outcomes []Outcome
}

// Counts reports how many entries were built, skipped, and failed.
func (s *Summary) Counts() (built, skipped, failed int) {
	for _, outcome := range s.Outcomes {
		switch {
		case outcome.Err != nil:
			failed++
		case outcome.Skipped:
			skipped++
		default:
			built++
		}
	}
	return built, skipped, failed
}

// BuildVideos builds and publishes a video manifest for every media object
// under the media prefix. Builds run on a bounded worker pool; publishes
// happen afterwards in listing order so output is deterministic.
func (b *Builder) BuildVideos(ctx context.Context) (*Summary, error) {
	keys, err := b.store.List(ctx, b.opts.MediaPrefix)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	summary := &Summary{Outcomes: make([]Outcome, len(keys))}
	documents := make([][]byte, len(keys))

	runPool(ctx, len(keys), b.opts.Concurrency, func(i int) {
		key := keys[i]
		summary.Outcomes[i].Key = key
		m, err := b.BuildVideoManifest(ctx, key)
		if err != nil {
			summary.Outcomes[i].Err = err
			b.logger.Warn("skipping media file", logging.String(logging.FieldKey, key), logging.Error(err))
			return
		}
		data, err := manifest.Encode(m)
		if err != nil {
			summary.Outcomes[i].Err = err
			return
		}
		documents[i] = data
	})

	for i, key := range keys {
		outcome := &summary.Outcomes[i]
		outcome.Key = key
		if outcome.Err != nil {
			continue
		}
		if documents[i] == nil {
			// Never dispatched before cancellation.
			outcome.Err = ctx.Err()
			continue
		}
		manifestKey := b.opts.ManifestPrefix + manifest.VideoManifestFileName(key)
		if err := b.publish(ctx, manifestKey, documents[i]); err != nil {
			outcome.Err = err
			continue
		}
		outcome.ManifestKey = manifestKey
		b.logger.Info("video manifest published",
			logging.String(logging.FieldKey, manifestKey),
			logging.Int64("length_bytes", int64(len(documents[i]))),
		)
	}

	return summary, nil
}

// BuildPlaylists derives a one-entry playlist manifest from every video
// manifest under the manifest prefix. Non-video documents in the prefix
// are kind-sniffed and skipped.
func (b *Builder) BuildPlaylists(ctx context.Context) (*Summary, error) {
	keys, err := b.listManifestKeys(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, key := range keys {
		outcome := Outcome{Key: key}
		data, err := b.fetch(ctx, key)
		switch {
		case err != nil:
			outcome.Err = err
		case manifest.DetectKind(data) != manifest.KindVideoManifest:
			outcome.Skipped = true
			b.logger.Warn("skipping non-video manifest",
				logging.String(logging.FieldKey, key),
				logging.String("kind", manifest.DetectKind(data).String()),
			)
		default:
			outcome.ManifestKey, outcome.Err = b.buildPlaylistFor(ctx, key, data)
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return summary, nil
}

func (b *Builder) buildPlaylistFor(ctx context.Context, key string, data []byte) (string, error) {
	header, err := manifest.DecodeHeader(data)
	if err != nil {
		return "", err
	}

	name := manifest.PlaylistNameFor(header.Name)
	ref := Ref{
		// Playlists sit alongside video manifests, so the reference is
		// relative to the playlist document's own location.
		URL:  "../" + b.opts.ManifestPrefix + path.Base(key),
		Data: data,
	}
	playlist, err := b.BuildPlaylistManifest(name, "Playlist for "+header.Name, []Ref{ref})
	if err != nil {
		return "", err
	}
	encoded, err := manifest.Encode(playlist)
	if err != nil {
		return "", err
	}

	playlistKey := b.opts.ManifestPrefix + manifest.PlaylistFileName(name)
	if err := b.publish(ctx, playlistKey, encoded); err != nil {
		return "", err
	}
	b.logger.Info("playlist manifest published", logging.String(logging.FieldKey, playlistKey))
	return playlistKey, nil
}

// BuildCatalogDocument assembles the catalog from every playlist manifest
// under the manifest prefix and publishes it at the catalog key.
func (b *Builder) BuildCatalogDocument(ctx context.Context) (*manifest.Catalog, *Summary, error) {
	keys, err := b.listManifestKeys(ctx)
	if err != nil {
		return nil, nil, err
	}

	summary := &Summary{}
	var refs []Ref
	for _, key := range keys {
		outcome := Outcome{Key: key}
		data, err := b.fetch(ctx, key)
		switch {
		case err != nil:
			outcome.Err = err
		case manifest.DetectKind(data) != manifest.KindPlaylistManifest:
			outcome.Skipped = true
			b.logger.Warn("skipping non-playlist manifest",
				logging.String(logging.FieldKey, key),
				logging.String("kind", manifest.DetectKind(data).String()),
			)
		default:
			// The catalog lives at the store root; references are
			// relative to it.
			refs = append(refs, Ref{URL: b.opts.ManifestPrefix + path.Base(key), Data: data})
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	catalog, err := b.BuildCatalog(refs)
	if err != nil {
		return nil, summary, err
	}
	encoded, err := manifest.Encode(catalog)
	if err != nil {
		return nil, summary, err
	}
	if err := b.publish(ctx, b.opts.CatalogKey, encoded); err != nil {
		return nil, summary, err
	}
	b.logger.Info("catalog published",
		logging.String(logging.FieldKey, b.opts.CatalogKey),
		logging.Int(logging.FieldCount, len(refs)),
	)
	return catalog, summary, nil
}

func (b *Builder) listManifestKeys(ctx context.Context) ([]string, error) {
	keys, err := b.store.List(ctx, b.opts.ManifestPrefix)
	if err != nil {
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	filtered := keys[:0]
	for _, key := range keys {
		if manifest.IsJSONKey(key) {
			filtered = append(filtered, key)
		}
	}
	return filtered, nil
}

func (b *Builder) fetch(ctx context.Context, key string) ([]byte, error) {
	body, err := b.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// publish writes the document to the store and, when a local directory is
// configured, mirrors it there under the document's base name.
func (b *Builder) publish(ctx context.Context, key string, data []byte) error {
	if err := b.store.Put(ctx, key, bytes.NewReader(data), manifest.ContentType); err != nil {
		return err
	}
	if b.opts.LocalDir != "" {
		target := filepath.Join(b.opts.LocalDir, path.Base(key))
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("mirror %s: %w", key, err)
		}
	}
	return nil
}

// runPool invokes fn(i) for every index on a bounded worker pool. Indices
// stop being dispatched once ctx is cancelled; in-flight work finishes.
func runPool(ctx context.Context, jobs, workers int, fn func(int)) {
	if workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}

dispatch:
	for i := 0; i < jobs; i++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()
}
