package tracker

import (
	"context"
	"log/slog"

	"github.com/agenthands/upsampler/internal/core/model"
)

// LogTracker writes runs and records as structured log lines.
type LogTracker struct {
	Logger *slog.Logger
}

func NewLogTracker(logger *slog.Logger) *LogTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTracker{Logger: logger}
}

func (t *LogTracker) StartRun(ctx context.Context, run RunInfo) error {
	t.Logger.InfoContext(ctx, "run",
		"run_id", run.ID,
		"name", run.Name,
		"upsample_enabled", run.UpsampleEnabled,
		"params", toJSON(run.Params),
		"attributes", toJSON(run.Attributes))
	return nil
}

func (t *LogTracker) LogRecord(ctx context.Context, runID string, rec model.EvaluationRecord) error {
	f := flatten(rec)
	attrs := []any{
		"run_id", runID,
		"index", rec.Index,
		"base_prompt", rec.BasePrompt,
		"final_caption", rec.FinalCaption,
	}
	if f.Score != nil {
		attrs = append(attrs, "score", *f.Score, "verdict", f.Verdict, "attempts", f.AttemptCount)
		t.Logger.InfoContext(ctx, "record", attrs...)
		return nil
	}
	attrs = append(attrs, "stage", f.Stage, "error", f.Error)
	t.Logger.WarnContext(ctx, "record", attrs...)
	return nil
}

func (t *LogTracker) FinishRun(ctx context.Context, runID string, s model.Summary) error {
	t.Logger.InfoContext(ctx, "summary",
		"run_id", runID,
		"total", s.Total,
		"succeeded", s.Succeeded,
		"failed", s.Failed,
		"cancelled", s.Cancelled,
		"mean_score", s.MeanScore,
		"median_score", s.MedianScore)
	return nil
}

func (t *LogTracker) Close(ctx context.Context) error { return nil }
