package tracker

import (
	"context"
	"time"

	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/driver"
)

// MemgraphTracker stores each run as an EvaluationRun node linked to its records.
type MemgraphTracker struct {
	Driver driver.GraphDriver
}

func NewMemgraphTracker(d driver.GraphDriver) *MemgraphTracker {
	return &MemgraphTracker{Driver: d}
}

func (t *MemgraphTracker) StartRun(ctx context.Context, run RunInfo) error {
	params := map[string]interface{}{
		"run_id":           run.ID,
		"name":             run.Name,
		"started_at":       run.StartedAt.Format(time.RFC3339Nano),
		"upsample_enabled": run.UpsampleEnabled,
		"params":           toJSON(run.Params),
		"attributes":       toJSON(run.Attributes),
	}
	_, err := t.Driver.ExecuteQuery(ctx, driver.SaveRunQuery, params)
	return err
}

func (t *MemgraphTracker) LogRecord(ctx context.Context, runID string, rec model.EvaluationRecord) error {
	f := flatten(rec)
	var score interface{}
	if f.Score != nil {
		score = *f.Score
	}
	params := map[string]interface{}{
		"id":               rec.ID,
		"run_id":           runID,
		"row_index":        rec.Index,
		"base_prompt":      rec.BasePrompt,
		"category":         rec.Category,
		"upsample_enabled": rec.UpsampleEnabled,
		"final_caption":    rec.FinalCaption,
		"score":            score,
		"verdict":          f.Verdict,
		"rationale":        f.Rationale,
		"attempt_count":    f.AttemptCount,
		"error":            f.Error,
		"stage":            f.Stage,
	}
	_, err := t.Driver.ExecuteQuery(ctx, driver.SaveRecordQuery, params)
	return err
}

func (t *MemgraphTracker) FinishRun(ctx context.Context, runID string, s model.Summary) error {
	params := map[string]interface{}{
		"run_id":       runID,
		"finished_at":  time.Now().UTC().Format(time.RFC3339Nano),
		"total":        s.Total,
		"succeeded":    s.Succeeded,
		"failed":       s.Failed,
		"cancelled":    s.Cancelled,
		"mean_score":   s.MeanScore,
		"median_score": s.MedianScore,
	}
	_, err := t.Driver.ExecuteQuery(ctx, driver.FinishRunQuery, params)
	return err
}

func (t *MemgraphTracker) Close(ctx context.Context) error {
	return t.Driver.Close(ctx)
}
