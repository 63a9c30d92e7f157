package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/agenthands/upsampler/internal/core"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/tracker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Upsampler interface {
	Upsample(ctx context.Context, basePrompt string, enabled bool) (model.UpsampleResult, error)
}

type Generator interface {
	Synthesize(ctx context.Context, up model.UpsampleResult, params model.GenerationParams) (model.GeneratedImage, error)
}

type Scorer interface {
	Score(ctx context.Context, basePrompt string, image model.GeneratedImage, seed, maxRetries int) (model.Judgement, error)
}

// RunOptions are fixed for every row of one run.
type RunOptions struct {
	UpsampleEnabled bool
	Params          model.GenerationParams
	Name            string
	Attributes      map[string]any
}

// Report is the outcome of one run. Records are in dataset order; rows
// skipped by cancellation are absent.
type Report struct {
	RunID      string                   `json:"run_id"`
	Name       string                   `json:"name"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Records    []model.EvaluationRecord `json:"records"`
	Summary    model.Summary            `json:"summary"`
}

// Failures returns the records that carry an error.
func (r *Report) Failures() []model.EvaluationRecord {
	var out []model.EvaluationRecord
	for _, rec := range r.Records {
		if !rec.Succeeded() {
			out = append(out, rec)
		}
	}
	return out
}

// Runner drives a dataset through upsample, synthesize and judge.
type Runner struct {
	Upsampler   Upsampler
	Generator   Generator
	Judge       Scorer
	Tracker     tracker.Tracker
	Concurrency int
	Logger      *slog.Logger
}

func NewRunner(pipeline *core.Pipeline, judge Scorer, t tracker.Tracker, concurrency int) *Runner {
	if t == nil {
		t = tracker.Nop{}
	}
	r := &Runner{
		Judge:       judge,
		Tracker:     t,
		Concurrency: concurrency,
		Logger:      slog.Default(),
	}
	if pipeline != nil {
		r.Upsampler = pipeline.Upsampler
		r.Generator = pipeline
	}
	return r
}

// Run evaluates rows. Only misconfiguration fails the run; row failures are
// reported on their records. Once ctx is done no new row starts, and running
// rows stop after their current stage.
func (r *Runner) Run(ctx context.Context, rows []model.DatasetRow, opts RunOptions) (*Report, error) {
	if err := r.validate(rows, opts); err != nil {
		return nil, err
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	if r.Tracker == nil {
		r.Tracker = tracker.Nop{}
	}

	report := &Report{
		RunID:     uuid.New().String(),
		Name:      opts.Name,
		StartedAt: time.Now().UTC(),
	}
	logger := r.Logger.With("run_id", report.RunID)
	logger.Info("evaluation started", "rows", len(rows), "upsample", opts.UpsampleEnabled)

	slots := make([]*model.EvaluationRecord, len(rows))

	var g errgroup.Group
	g.SetLimit(max(r.Concurrency, 1))
	for i, row := range rows {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if rec, ok := r.runRow(ctx, i, row, opts); ok {
				slots[i] = &rec
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, rec := range slots {
		if rec != nil {
			report.Records = append(report.Records, *rec)
		}
	}
	report.Summary = Summarize(report.Records, len(rows))
	report.FinishedAt = time.Now().UTC()

	logger.Info("evaluation finished",
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"cancelled", report.Summary.Cancelled,
		"mean_score", report.Summary.MeanScore)

	r.emit(context.WithoutCancel(ctx), report, opts)
	return report, nil
}

func (r *Runner) validate(rows []model.DatasetRow, opts RunOptions) error {
	if r.Upsampler == nil || r.Generator == nil || r.Judge == nil {
		return fmt.Errorf("runner requires an upsampler, a generator and a judge")
	}
	if len(rows) == 0 {
		return model.ErrEmptyDataset
	}
	return opts.Params.Validate()
}

// runRow returns false when the row was cancelled before it completed.
func (r *Runner) runRow(ctx context.Context, index int, row model.DatasetRow, opts RunOptions) (model.EvaluationRecord, bool) {
	rec := model.EvaluationRecord{
		ID:              uuid.New().String(),
		Index:           index,
		BasePrompt:      row.BasePrompt,
		Category:        row.Category,
		UpsampleEnabled: opts.UpsampleEnabled,
	}
	fail := func(stage model.Stage, err error) (model.EvaluationRecord, bool) {
		rec.Error = &model.DatasetRowError{Index: index, BasePrompt: row.BasePrompt, Stage: stage, Err: err}
		r.Logger.Warn("row failed", "index", index, "stage", stage, "error", err)
		return rec, true
	}

	if ctx.Err() != nil {
		return rec, false
	}
	if strings.TrimSpace(row.BasePrompt) == "" {
		return fail(model.StageUpsample, model.ErrEmptyPrompt)
	}

	// Stages are not interrupted midway; cancellation is observed between them.
	stageCtx := context.WithoutCancel(ctx)

	up, err := r.Upsampler.Upsample(stageCtx, row.BasePrompt, opts.UpsampleEnabled)
	if err != nil {
		return fail(model.StageUpsample, err)
	}
	rec.FinalCaption = up.FinalCaption
	if ctx.Err() != nil {
		return rec, false
	}

	img, err := r.Generator.Synthesize(stageCtx, up, opts.Params)
	if err != nil {
		var serr *model.SynthesisError
		if !errors.As(err, &serr) {
			err = &model.SynthesisError{Err: err}
		}
		return fail(model.StageSynthesize, err)
	}
	if ctx.Err() != nil {
		return rec, false
	}

	judgement, err := r.Judge.Score(stageCtx, row.BasePrompt, img, opts.Params.Seed, opts.Params.MaxRetries)
	if err != nil {
		return fail(model.StageJudge, err)
	}
	rec.Judgement = &judgement
	return rec, true
}

// Summarize aggregates scores over successful records. total is the number
// of dataset rows, so rows missing from records count as cancelled.
func Summarize(records []model.EvaluationRecord, total int) model.Summary {
	s := model.Summary{Total: total}
	scores := make([]float64, 0, len(records))
	for _, rec := range records {
		if rec.Succeeded() {
			scores = append(scores, rec.Judgement.Score)
		} else {
			s.Failed++
		}
	}
	s.Succeeded = len(scores)
	s.Cancelled = total - len(records)
	if len(scores) == 0 {
		return s
	}

	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	s.MeanScore = sum / float64(len(scores))

	slices.Sort(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		s.MedianScore = (scores[mid-1] + scores[mid]) / 2
	} else {
		s.MedianScore = scores[mid]
	}
	return s
}

// emit hands the finished run to the tracker. Tracker failures never fail the run.
func (r *Runner) emit(ctx context.Context, report *Report, opts RunOptions) {
	info := tracker.RunInfo{
		ID:              report.RunID,
		Name:            report.Name,
		StartedAt:       report.StartedAt,
		UpsampleEnabled: opts.UpsampleEnabled,
		Params:          opts.Params,
		Attributes:      opts.Attributes,
	}
	if err := r.Tracker.StartRun(ctx, info); err != nil {
		r.Logger.Error("tracker rejected run", "run_id", report.RunID, "error", err)
		return
	}
	for _, rec := range report.Records {
		if err := r.Tracker.LogRecord(ctx, report.RunID, rec); err != nil {
			r.Logger.Error("tracker rejected record", "run_id", report.RunID, "index", rec.Index, "error", err)
		}
	}
	if err := r.Tracker.FinishRun(ctx, report.RunID, report.Summary); err != nil {
		r.Logger.Error("tracker rejected summary", "run_id", report.RunID, "error", err)
	}
}
