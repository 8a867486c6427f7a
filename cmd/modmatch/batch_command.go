package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"modmatch/internal/batch"
	"modmatch/internal/folderscan"
	"modmatch/internal/matcher"
)

type batchView struct {
	CorrelationID string         `json:"correlation_id" yaml:"correlation_id"`
	DurationMS    int64          `json:"duration_ms" yaml:"duration_ms"`
	Counts        map[string]int `json:"counts" yaml:"counts"`
	Failed        int            `json:"failed" yaml:"failed"`
	Skipped       int            `json:"skipped" yaml:"skipped"`
	Results       []matchView    `json:"results" yaml:"results"`
}

func newBatchView(report batch.Report, explain bool) batchView {
	view := batchView{
		CorrelationID: report.CorrelationID,
		DurationMS:    report.Duration.Milliseconds(),
		Counts:        make(map[string]int, len(report.Counts)),
		Failed:        report.Failed,
		Skipped:       report.Skipped,
		Results:       make([]matchView, 0, len(report.Results)),
	}
	for status, n := range report.Counts {
		view.Counts[string(status)] = n
	}
	for _, fr := range report.Results {
		view.Results = append(view.Results, newMatchView(fr, explain))
	}
	return view
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags matchFlags
	var output outputFlags
	var concurrency int
	var explain bool

	cmd := &cobra.Command{
		Use:   "batch <library>",
		Short: "Match every mod folder directly under a library directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.newSession(&flags)
			if err != nil {
				return err
			}
			defer session.close()
			if concurrency > 0 {
				session.cfg.Batch.Concurrency = concurrency
			}

			folders, err := folderscan.Discover(args[0], session.cfg.Batch.Excludes)
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No mod folders found in %s\n", args[0])
				return nil
			}

			report, err := session.runner.Run(cmd.Context(), folders)
			if err != nil {
				return err
			}
			view := newBatchView(report, explain)
			if done, err := output.structured(cmd, view); done {
				return err
			}
			printBatch(cmd.OutOrStdout(), view)
			return nil
		},
	}
	flags.register(cmd)
	output.register(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Folders matched in parallel (overrides batch.concurrency)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Include reasons and stage traces in JSON/YAML output")
	return cmd
}

func printBatch(out io.Writer, view batchView) {
	rows := make([][]string, 0, len(view.Results))
	for _, r := range view.Results {
		label := r.Label
		if r.Error != "" {
			label = "Error: " + r.Error
		}
		rows = append(rows, []string{
			folderLabel(r.Folder),
			label,
			r.Confidence,
			r.Stage,
			r.Mode,
		})
	}
	writeRows(out, []string{"Folder", "Result", "Confidence", "Stage", "Mode"}, rows, nil)

	statuses := []string{
		string(matcher.StatusAutoMatched),
		string(matcher.StatusNeedsReview),
		string(matcher.StatusNoMatch),
	}
	for status := range view.Counts {
		if !containsString(statuses, status) {
			statuses = append(statuses, status)
		}
	}
	sort.Strings(statuses[3:])
	fmt.Fprintln(out)
	for _, status := range statuses {
		fmt.Fprintf(out, "%-13s %d\n", status+":", view.Counts[status])
	}
	if view.Failed > 0 {
		fmt.Fprintf(out, "%-13s %d\n", "failed:", view.Failed)
	}
	if view.Skipped > 0 {
		fmt.Fprintf(out, "%-13s %d\n", "skipped:", view.Skipped)
	}
	fmt.Fprintf(out, "Run %s finished in %dms\n", view.CorrelationID, view.DurationMS)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
