package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"vcat/internal/build"
	"vcat/internal/config"
	"vcat/internal/ledger"
	"vcat/internal/logging"
	"vcat/internal/media/probe"
	"vcat/internal/store"
	"vcat/internal/verify"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the shared logger from config. Logger failures fall
// back to a no-op logger rather than blocking the command.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// newStore constructs the configured storage backend.
func (c *commandContext) newStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case "s3":
		return store.NewS3(ctx, store.S3Options{
			Bucket:        cfg.Store.Bucket,
			Region:        cfg.Store.Region,
			Endpoint:      cfg.Store.Endpoint,
			PublicBaseURL: cfg.Store.PublicBaseURL,
		})
	case "dir":
		return store.NewDir(cfg.Store.Root, cfg.Store.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func (c *commandContext) newBuilder(ctx context.Context, concurrency int) (*build.Builder, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = cfg.Build.Concurrency
	}
	return build.New(st, probe.FFProbe{Binary: cfg.Build.FFprobeBinary}, build.Options{
		CreatedBy:          cfg.Catalog.CreatedBy,
		MediaPrefix:        cfg.Catalog.MediaPrefix,
		ManifestPrefix:     cfg.Catalog.ManifestPrefix,
		CatalogKey:         cfg.Catalog.CatalogKey,
		CatalogName:        cfg.Catalog.Name,
		CatalogDescription: cfg.Catalog.Description,
		LocalDir:           cfg.Paths.ManifestDir,
		Concurrency:        concurrency,
		Logger:             c.ensureLogger(),
	}), nil
}

func (c *commandContext) newVerifier(ctx context.Context, opts verify.Options) (*verify.Verifier, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Verify.Concurrency
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = time.Duration(cfg.Verify.HTTPTimeout) * time.Second
	}
	opts.Logger = c.ensureLogger()
	return verify.New(st, opts), nil
}

// runRecorder appends a run to the local history. A nil recorder is safe
// and silently drops the record; a broken ledger never blocks a build.
type runRecorder struct {
	store *ledger.Store
	id    int64
}

func (c *commandContext) beginRun(ctx context.Context, kind ledger.RunKind) *runRecorder {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	history, err := ledger.Open(cfg.Paths.LogDir)
	if err != nil {
		c.ensureLogger().Warn("run history unavailable", logging.Error(err))
		return nil
	}
	id, err := history.Begin(ctx, kind)
	if err != nil {
		c.ensureLogger().Warn("record run start", logging.Error(err))
		_ = history.Close()
		return nil
	}
	return &runRecorder{store: history, id: id}
}

func (r *runRecorder) finish(ctx context.Context, total, passed, failed int, detail string) {
	if r == nil {
		return
	}
	_ = r.store.Finish(ctx, r.id, total, passed, failed, detail)
	_ = r.store.Close()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
