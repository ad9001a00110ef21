package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"vcat/internal/digest"
	"vcat/internal/logging"
	"vcat/internal/manifest"
	"vcat/internal/store"
)

// Options configures a Verifier.
type Options struct {
	// Concurrency bounds the per-level worker pool.
	Concurrency int
	// Recursive descends verified playlists into their referenced
	// manifests.
	Recursive bool
	// Deep additionally fetches and digests the media bytes behind video
	// manifests. Deep implies Recursive.
	Deep bool
	// HTTPTimeout bounds fetches of references outside the store.
	HTTPTimeout time.Duration
	Logger      *slog.Logger
}

// Verifier refetches referenced documents and compares their digests with
// the checksums their parents recorded.
type Verifier struct {
	store  store.Store
	client *http.Client
	opts   Options
	logger *slog.Logger
}

// New constructs a Verifier.
func New(st store.Store, opts Options) *Verifier {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 30 * time.Second
	}
	if opts.Deep {
		opts.Recursive = true
	}
	return &Verifier{
		store:  st,
		client: &http.Client{Timeout: opts.HTTPTimeout},
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "verifier"),
	}
}

// VerifyCatalog fetches the catalog and verifies every playlist it
// references. The catalog's sentinel and structure are checked before any
// entry is fetched; a structural violation ends the run with zero entry
// fetches. Entry failures never stop the run, and cancellation returns the
// partial report with untouched entries still pending.
func (v *Verifier) VerifyCatalog(ctx context.Context, catalogKey string) *Report {
	report := &Report{Root: catalogKey, Entries: []Entry{}}

	data, err := v.fetch(ctx, ref{key: catalogKey, base: catalogKey})
	if err != nil {
		report.State = StateIOError
		if errors.Is(err, store.ErrNotFound) {
			report.State = StateNotFound
		}
		report.Error = err.Error()
		return report
	}

	catalog, err := manifest.DecodeCatalog(data)
	if err != nil {
		report.State = StateStructuralError
		report.Error = err.Error()
		v.logger.Warn("catalog failed structural check",
			logging.String(logging.FieldKey, catalogKey), logging.Error(err))
		return report
	}
	report.State = StateVerified

	report.Entries = v.verifyRefs(ctx, catalogKey, catalog.Playlists)
	passed, total := report.Summary()
	v.logger.Info("catalog verification finished",
		logging.String(logging.FieldKey, catalogKey),
		logging.Int("passed", passed),
		logging.Int("total", total),
	)
	return report
}

// VerifyManifests sweeps the manifest prefix and verifies the media bytes
// behind every video manifest found there. Playlists and other documents
// under the prefix are skipped; unparsable video manifests become
// structural errors.
func (v *Verifier) VerifyManifests(ctx context.Context, prefix string) (*Report, error) {
	keys, err := v.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	report := &Report{Root: prefix, State: StateVerified, Entries: []Entry{}}
	candidates := keys[:0]
	for _, key := range keys {
		if manifest.IsJSONKey(key) {
			candidates = append(candidates, key)
		}
	}

	results := make([]*Entry, len(candidates))
	v.runPool(ctx, len(candidates), func(i int) {
		results[i] = v.verifyMediaBehind(ctx, candidates[i])
	})

	for i, result := range results {
		if result == nil {
			if ctx.Err() != nil {
				// Cancelled before dispatch; report the document as
				// untouched rather than dropping it.
				report.Entries = append(report.Entries, Entry{
					Index: len(report.Entries),
					Name:  candidates[i],
					URL:   candidates[i],
					State: StatePending,
				})
			}
			continue
		}
		result.Index = len(report.Entries)
		report.Entries = append(report.Entries, *result)
	}
	return report, nil
}

// verifyMediaBehind fetches one manifest document and, when it is a video
// manifest, verifies its media asset. Non-video documents return nil and
// are omitted from the report.
func (v *Verifier) verifyMediaBehind(ctx context.Context, key string) *Entry {
	data, err := v.fetch(ctx, ref{key: key, base: key})
	if err != nil {
		entry := &Entry{Name: key, URL: key, State: StateIOError, Error: err.Error()}
		if errors.Is(err, store.ErrNotFound) {
			entry.State = StateNotFound
		}
		return entry
	}
	if manifest.DetectKind(data) != manifest.KindVideoManifest {
		return nil
	}
	vm, err := manifest.DecodeVideoManifest(data)
	if err != nil {
		return &Entry{Name: key, URL: key, State: StateStructuralError, Error: err.Error()}
	}
	asset := vm.MediaAsset
	entry, _ := v.verifyChecksum(ctx, v.resolveRef(key, asset.URL), Entry{
		Name:     vm.Header.Name,
		URL:      asset.URL,
		Expected: asset.Checksum,
	}, asset.LengthBytes)
	return &entry
}

// verifyRefs verifies the references of one document level on a bounded
// worker pool. Results land in entry index order regardless of worker
// scheduling.
func (v *Verifier) verifyRefs(ctx context.Context, baseKey string, assets []manifest.PlaylistAsset) []Entry {
	entries := make([]Entry, len(assets))
	for i, asset := range assets {
		entries[i] = Entry{
			Index:    i,
			Name:     asset.Name,
			URL:      asset.URL,
			State:    StatePending,
			Expected: asset.Checksum,
		}
	}

	v.runPool(ctx, len(assets), func(i int) {
		entries[i] = v.verifyRef(ctx, baseKey, entries[i], assets[i].LengthBytes)
	})
	return entries
}

// verifyRef verifies a single reference. Documents that match their
// checksum must still carry a manifest discriminator; in recursive runs
// the verifier additionally descends into them.
func (v *Verifier) verifyRef(ctx context.Context, baseKey string, entry Entry, wantLength int64) Entry {
	r := v.resolveRef(baseKey, entry.URL)
	entry, data := v.verifyChecksum(ctx, r, entry, wantLength)
	switch entry.State {
	case StateVerified:
		entry = v.inspect(ctx, r.base, data, entry)
	case StateMismatch:
		v.logger.Warn("checksum mismatch",
			logging.String(logging.FieldEntry, entry.Name),
			logging.String("expected", entry.Expected),
			logging.String("actual", entry.Actual),
		)
	case StateNotFound, StateIOError:
		v.logger.Warn("reference fetch failed",
			logging.String(logging.FieldEntry, entry.Name),
			logging.String(logging.FieldState, entry.State.String()),
		)
	}
	v.logger.Debug("reference checked",
		logging.String(logging.FieldEntry, entry.Name),
		logging.String(logging.FieldState, entry.State.String()),
	)
	return entry
}

// inspect classifies a checksum-verified document and, in recursive runs,
// walks into it. Playlists recurse into their references; in deep runs
// video manifests additionally get their media bytes verified. A document
// that matches its checksum but carries no manifest discriminator, or
// fails to decode, is a structural error.
func (v *Verifier) inspect(ctx context.Context, base string, data []byte, entry Entry) Entry {
	switch manifest.DetectKind(data) {
	case manifest.KindPlaylistManifest:
		playlist, err := manifest.DecodePlaylistManifest(data)
		if err != nil {
			entry.State = StateStructuralError
			entry.Error = err.Error()
			return entry
		}
		if v.opts.Recursive {
			entry.Children = v.verifyRefs(ctx, base, playlist.MediaAssets)
		}
	case manifest.KindVideoManifest:
		vm, err := manifest.DecodeVideoManifest(data)
		if err != nil {
			entry.State = StateStructuralError
			entry.Error = err.Error()
			return entry
		}
		if !v.opts.Deep {
			return entry
		}
		asset := vm.MediaAsset
		child, _ := v.verifyChecksum(ctx, v.resolveRef(base, asset.URL), Entry{
			Name:     asset.Name,
			URL:      asset.URL,
			Expected: asset.Checksum,
		}, asset.LengthBytes)
		entry.Children = []Entry{child}
	default:
		entry.State = StateStructuralError
		entry.Error = "document carries no manifest discriminator"
		v.logger.Warn("reference failed structural check",
			logging.String(logging.FieldEntry, entry.Name),
			logging.String("url", entry.URL),
		)
	}
	return entry
}

// verifyChecksum fetches a resolved reference and compares its digest,
// without descending into the result. The fetched bytes are returned so
// recursive callers can reuse them.
func (v *Verifier) verifyChecksum(ctx context.Context, r ref, entry Entry, wantLength int64) (Entry, []byte) {
	data, err := v.fetch(ctx, r)
	if err != nil {
		entry.State = StateIOError
		if errors.Is(err, store.ErrNotFound) {
			entry.State = StateNotFound
		}
		entry.Error = err.Error()
		return entry, nil
	}
	entry.State = StateFetched
	entry.Actual = digest.SumBytes(data)
	entry.State = StateDigestComputed
	if entry.Actual != entry.Expected {
		entry.State = StateMismatch
		return entry, data
	}
	if wantLength > 0 && int64(len(data)) != wantLength {
		entry.State = StateMismatch
		entry.Error = "recorded length does not match fetched bytes"
		return entry, data
	}
	entry.State = StateVerified
	return entry, data
}

// runPool invokes fn(i) for every index on a bounded worker pool,
// dispatching nothing further once ctx is cancelled.
func (v *Verifier) runPool(ctx context.Context, jobs int, fn func(int)) {
	workers := v.opts.Concurrency
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
