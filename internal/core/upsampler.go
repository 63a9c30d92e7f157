package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/exemplar"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/core/rewrite"
	"github.com/agenthands/upsampler/internal/core/selector"
	"github.com/agenthands/upsampler/internal/llm"
)

// Upsampler turns a short prompt into a descriptive caption: one rewrite
// per exemplar, then a single comparison over the survivors.
type Upsampler struct {
	Rewriter  *rewrite.Rewriter
	Selector  *selector.Selector
	Exemplars []model.Exemplar
	Logger    *slog.Logger
}

// NewUpsampler takes the first fanOut exemplars of bank. concurrency bounds
// the rewrite calls in flight for one prompt.
func NewUpsampler(llmClient llm.LLMClient, bank *exemplar.Bank, fanOut int, prompts config.Prompts, concurrency int) (*Upsampler, error) {
	if llmClient == nil {
		return nil, fmt.Errorf("upsampler requires an llm client")
	}
	exemplars, err := bank.Take(fanOut)
	if err != nil {
		return nil, err
	}
	return &Upsampler{
		Rewriter:  rewrite.NewRewriter(llmClient, prompts, concurrency),
		Selector:  selector.NewSelector(llmClient, prompts),
		Exemplars: exemplars,
		Logger:    slog.Default(),
	}, nil
}

// Upsample returns the base prompt untouched when enabled is false. When
// every rewrite fails it degrades to the base prompt instead of failing.
func (u *Upsampler) Upsample(ctx context.Context, basePrompt string, enabled bool) (model.UpsampleResult, error) {
	if !enabled {
		return model.UpsampleResult{FinalCaption: basePrompt, BasePrompt: basePrompt}, nil
	}

	candidates, err := u.Rewriter.Rewrite(ctx, basePrompt, u.Exemplars)
	if err != nil {
		return model.UpsampleResult{}, err
	}

	result, err := u.Selector.Select(ctx, basePrompt, candidates)
	if errors.Is(err, model.ErrNoCandidates) {
		// A cancelled context also empties the candidate set; that is not a degradation.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.UpsampleResult{}, ctxErr
		}
		u.Logger.Warn("no rewrite candidates, falling back to base prompt", "base_prompt", basePrompt)
		return model.UpsampleResult{FinalCaption: basePrompt, BasePrompt: basePrompt, Degraded: true}, nil
	}
	if err != nil {
		return model.UpsampleResult{}, err
	}
	return result, nil
}
