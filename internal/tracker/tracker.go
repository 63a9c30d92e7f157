package tracker

import (
	"context"
	"time"

	"github.com/agenthands/upsampler/internal/core/model"
)

// RunInfo describes an evaluation run as a whole.
type RunInfo struct {
	ID              string
	Name            string
	StartedAt       time.Time
	UpsampleEnabled bool
	Params          model.GenerationParams
	Attributes      map[string]any
}

// Tracker receives the records of a run after it completes. Implementations
// are adapters to an external experiment store.
type Tracker interface {
	StartRun(ctx context.Context, run RunInfo) error
	LogRecord(ctx context.Context, runID string, rec model.EvaluationRecord) error
	FinishRun(ctx context.Context, runID string, summary model.Summary) error
	Close(ctx context.Context) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) StartRun(context.Context, RunInfo) error                          { return nil }
func (Nop) LogRecord(context.Context, string, model.EvaluationRecord) error { return nil }
func (Nop) FinishRun(context.Context, string, model.Summary) error          { return nil }
func (Nop) Close(context.Context) error                                     { return nil }
