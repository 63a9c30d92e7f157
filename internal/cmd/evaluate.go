package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/agenthands/upsampler/internal/core/runner"
	"github.com/agenthands/upsampler/internal/dataset"
	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	var (
		datasetPath string
		reportPath  string
		limit       int
		noUpsample  bool
		trackerName string
		params      paramFlags
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a dataset through upsample, synthesize and judge",
		Long: "Load a dataset of base prompts (JSONL, JSON, CSV, TSV or plain text), generate an image for each, " +
			"score every image with the judge and print the per-row results and the aggregate scores.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return errors.New("--dataset is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if trackerName != "" {
				cfg.Tracker.Backend = trackerName
			}
			if cmd.Flags().Changed("no-upsample") {
				cfg.Upsampling.Enabled = !noUpsample
			}
			p, err := params.apply(cmd, cfg)
			if err != nil {
				return err
			}

			rows, err := dataset.Load(datasetPath)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(rows) {
				rows = rows[:limit]
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			report, err := a.Evaluate(ctx, rows, cfg.Upsampling.Enabled, p)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)

			if reportPath != "" {
				if err := writeReport(reportPath, report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report saved at: %s\n", reportPath)
			}
			return nil
		},
		Example: `upsampler evaluate --dataset drawbench.csv --limit 20 --stock-negative-prompt --report out/report.json`,
	}

	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "path to the dataset file (required)")
	cmd.Flags().StringVar(&reportPath, "report", "", "optional path to write the full report as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "evaluate only the first N rows")
	cmd.Flags().BoolVar(&noUpsample, "no-upsample", false, "send base prompts to the diffusion backend unchanged")
	cmd.Flags().StringVar(&trackerName, "tracker", "", "override the tracker backend (none, log, sqlite, memgraph)")
	addParamFlags(cmd, &params)
	return cmd
}

func printReport(w io.Writer, r *runner.Report) {
	fmt.Fprintf(w, "Run %s (%s)\n", r.RunID, r.Name)
	for _, rec := range r.Records {
		if rec.Succeeded() {
			fmt.Fprintf(w, "  [%d] %.3f %-4s %q -> %q\n", rec.Index, rec.Judgement.Score, rec.Judgement.Verdict, rec.BasePrompt, rec.FinalCaption)
			continue
		}
		fmt.Fprintf(w, "  [%d] ERROR %q: %s\n", rec.Index, rec.BasePrompt, rec.ErrorMessage())
	}
	s := r.Summary
	fmt.Fprintf(w, "Rows: %d  succeeded: %d  failed: %d  cancelled: %d\n", s.Total, s.Succeeded, s.Failed, s.Cancelled)
	fmt.Fprintf(w, "Mean score: %.4f  median score: %.4f\n", s.MeanScore, s.MedianScore)
}

type reportRecord struct {
	Index        int      `json:"index"`
	BasePrompt   string   `json:"base_prompt"`
	Category     string   `json:"category,omitempty"`
	FinalCaption string   `json:"final_caption,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Verdict      string   `json:"verdict,omitempty"`
	Rationale    string   `json:"rationale,omitempty"`
	Attempts     int      `json:"attempts,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func writeReport(path string, r *runner.Report) error {
	records := make([]reportRecord, len(r.Records))
	for i, rec := range r.Records {
		out := reportRecord{
			Index:        rec.Index,
			BasePrompt:   rec.BasePrompt,
			Category:     rec.Category,
			FinalCaption: rec.FinalCaption,
			Error:        rec.ErrorMessage(),
		}
		if rec.Judgement != nil {
			score := rec.Judgement.Score
			out.Score = &score
			out.Verdict = rec.Judgement.Verdict
			out.Rationale = rec.Judgement.Rationale
			out.Attempts = rec.Judgement.AttemptCount
		}
		records[i] = out
	}

	data, err := json.MarshalIndent(map[string]any{
		"run_id":      r.RunID,
		"name":        r.Name,
		"started_at":  r.StartedAt,
		"finished_at": r.FinishedAt,
		"summary":     r.Summary,
		"records":     records,
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func init() { rootCmd.AddCommand(newEvaluateCmd()) }
