package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vcat/internal/build"
	"vcat/internal/ledger"
)

// buildStep is one phase of the bottom-up pipeline: video manifests, then
// playlists, then the catalog.
type buildStep struct {
	kind  ledger.RunKind
	label string
	run   func(context.Context, *build.Builder) (*build.Summary, error)
}

func buildSteps() []buildStep {
	return []buildStep{
		{
			kind:  ledger.RunBuildVideos,
			label: "video manifests",
			run: func(ctx context.Context, b *build.Builder) (*build.Summary, error) {
				return b.BuildVideos(ctx)
			},
		},
		{
			kind:  ledger.RunBuildPlaylists,
			label: "playlist manifests",
			run: func(ctx context.Context, b *build.Builder) (*build.Summary, error) {
				return b.BuildPlaylists(ctx)
			},
		},
		{
			kind:  ledger.RunBuildCatalog,
			label: "catalog entries",
			run: func(ctx context.Context, b *build.Builder) (*build.Summary, error) {
				_, summary, err := b.BuildCatalogDocument(ctx)
				return summary, err
			},
		},
	}
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var concurrency int

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build manifest documents into the store",
	}
	buildCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "Worker pool size (defaults to config)")

	steps := buildSteps()
	buildCmd.AddCommand(newBuildStepCommand(ctx, &concurrency, steps[0], "videos",
		"Build a video manifest for every media object"))
	buildCmd.AddCommand(newBuildStepCommand(ctx, &concurrency, steps[1], "playlists",
		"Build a playlist manifest for every video manifest"))
	buildCmd.AddCommand(newBuildStepCommand(ctx, &concurrency, steps[2], "catalog",
		"Build the catalog from every playlist manifest"))
	buildCmd.AddCommand(newBuildAllCommand(ctx, &concurrency))

	return buildCmd
}

func newBuildStepCommand(ctx *commandContext, concurrency *int, step buildStep, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, *concurrency, step)
		},
	}
}

func newBuildAllCommand(ctx *commandContext, concurrency *int) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the full bottom-up pipeline: videos, playlists, catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var firstErr error
			for _, step := range buildSteps() {
				if err := runBuild(cmd, ctx, *concurrency, step); err != nil {
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			return firstErr
		},
	}
}

func runBuild(cmd *cobra.Command, ctx *commandContext, concurrency int, step buildStep) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := acquireBuildLock(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	builder, err := ctx.newBuilder(cmd.Context(), concurrency)
	if err != nil {
		return err
	}

	recorder := ctx.beginRun(cmd.Context(), step.kind)
	summary, err := step.run(cmd.Context(), builder)
	if err != nil {
		recorder.finish(cmd.Context(), 0, 0, 0, err.Error())
		return fmt.Errorf("build %s: %w", step.label, err)
	}

	built, skipped, failed := summary.Counts()
	detail := ""
	if failed > 0 {
		detail = fmt.Sprintf("%d failed", failed)
	}
	recorder.finish(cmd.Context(), len(summary.Outcomes), built, failed, detail)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Built %d %s", built, step.label)
	if skipped > 0 {
		fmt.Fprintf(out, ", skipped %d", skipped)
	}
	if failed > 0 {
		fmt.Fprintf(out, ", failed %d", failed)
	}
	fmt.Fprintln(out)
	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(out, "  %s: %v\n", outcome.Key, outcome.Err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("build %s: %d of %d failed", step.label, failed, len(summary.Outcomes))
	}
	return nil
}
