package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vcat/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent build and verify runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, runs)
			}
			renderRuns(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")
	return cmd
}

func renderRuns(cmd *cobra.Command, runs []ledger.Run) {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return
	}

	caser := cases.Title(language.English)
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		result := "running"
		if run.Finished {
			result = fmt.Sprintf("%d/%d passed", run.Passed, run.Total)
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			caser.String(strings.ReplaceAll(string(run.Kind), "_", " ")),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			result,
			truncate(run.Detail, 48),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"ID", "KIND", "STARTED", "RESULT", "DETAIL"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
}
