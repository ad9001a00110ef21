package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vcat/internal/ledger"
	"vcat/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		concurrency int
		jsonOut     bool
	)

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify published documents against their recorded checksums",
	}
	verifyCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "Worker pool size (defaults to config)")
	verifyCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit the full report as JSON")

	verifyCmd.AddCommand(newVerifyCatalogCommand(ctx, &concurrency, &jsonOut))
	verifyCmd.AddCommand(newVerifyManifestsCommand(ctx, &concurrency, &jsonOut))

	return verifyCmd
}

func newVerifyCatalogCommand(ctx *commandContext, concurrency *int, jsonOut *bool) *cobra.Command {
	var (
		recursive bool
		deep      bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Verify the catalog and every playlist it references",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("recursive") {
				recursive = cfg.Verify.Recursive
			}
			if !cmd.Flags().Changed("deep") {
				deep = cfg.Verify.Deep
			}

			verifier, err := ctx.newVerifier(cmd.Context(), verify.Options{
				Concurrency: *concurrency,
				Recursive:   recursive,
				Deep:        deep,
			})
			if err != nil {
				return err
			}

			recorder := ctx.beginRun(cmd.Context(), ledger.RunVerifyCatalog)
			report := verifier.VerifyCatalog(cmd.Context(), cfg.Catalog.CatalogKey)
			finishVerifyRun(cmd, recorder, report)
			return emitReport(cmd, report, *jsonOut)
		},
	}

	cmd.Flags().BoolVar(&recursive, "recursive", false, "Descend verified playlists into their manifests")
	cmd.Flags().BoolVar(&deep, "deep", false, "Also fetch and digest the media bytes behind video manifests")
	return cmd
}

func newVerifyManifestsCommand(ctx *commandContext, concurrency *int, jsonOut *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "manifests",
		Short: "Verify the media bytes behind every video manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			verifier, err := ctx.newVerifier(cmd.Context(), verify.Options{Concurrency: *concurrency})
			if err != nil {
				return err
			}

			recorder := ctx.beginRun(cmd.Context(), ledger.RunVerifyManifests)
			report, err := verifier.VerifyManifests(cmd.Context(), cfg.Catalog.ManifestPrefix)
			if err != nil {
				recorder.finish(cmd.Context(), 0, 0, 0, err.Error())
				return fmt.Errorf("verify manifests: %w", err)
			}
			finishVerifyRun(cmd, recorder, report)
			return emitReport(cmd, report, *jsonOut)
		},
	}
}

func finishVerifyRun(cmd *cobra.Command, recorder *runRecorder, report *verify.Report) {
	passed, total := report.Summary()
	detail := ""
	if report.Error != "" {
		detail = truncate(report.Error, 200)
	}
	recorder.finish(cmd.Context(), total, passed, total-passed, detail)
}

func emitReport(cmd *cobra.Command, report *verify.Report, jsonOut bool) error {
	if jsonOut {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		renderReport(cmd, report)
	}

	passed, total := report.Summary()
	if !report.Passed() {
		if report.State != verify.StateVerified {
			return fmt.Errorf("verification failed: %s %s", report.Root, report.State)
		}
		return fmt.Errorf("verification failed: %d of %d entries passed", passed, total)
	}
	return nil
}

func renderReport(cmd *cobra.Command, report *verify.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "%s: %s", report.Root, colorizeState(report.State, colorize))
	if report.Error != "" {
		fmt.Fprintf(out, " (%s)", report.Error)
	}
	fmt.Fprintln(out)

	if len(report.Entries) > 0 {
		var rows [][]string
		appendEntryRows(&rows, report.Entries, 0, colorize)
		fmt.Fprintln(out, renderTable(
			[]string{"ENTRY", "STATE", "DETAIL"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}

	passed, total := report.Summary()
	fmt.Fprintf(out, "%d/%d passed\n", passed, total)
}

func appendEntryRows(rows *[][]string, entries []verify.Entry, depth int, colorize bool) {
	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		*rows = append(*rows, []string{
			indent + entry.Name,
			colorizeState(entry.State, colorize),
			entryDetail(entry),
		})
		appendEntryRows(rows, entry.Children, depth+1, colorize)
	}
}

func entryDetail(entry verify.Entry) string {
	switch entry.State {
	case verify.StateMismatch:
		if entry.Error != "" {
			return entry.Error
		}
		return fmt.Sprintf("expected %s, got %s", truncate(entry.Expected, 16), truncate(entry.Actual, 16))
	case verify.StateNotFound, verify.StateIOError, verify.StateStructuralError:
		return truncate(entry.Error, 80)
	default:
		return ""
	}
}
