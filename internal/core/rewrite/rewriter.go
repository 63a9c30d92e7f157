package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/common"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/core/prompts"
	"github.com/agenthands/upsampler/internal/llm"
	"golang.org/x/sync/errgroup"
)

// Rewriter produces one upsampled caption candidate per exemplar.
type Rewriter struct {
	LLM          llm.LLMClient
	SystemPrompt string
	Prompt       string
	// Concurrency bounds the in-flight candidate calls.
	Concurrency int
	MaxTokens   int
	Logger      *slog.Logger
}

func NewRewriter(llmClient llm.LLMClient, p config.Prompts, concurrency int) *Rewriter {
	r := &Rewriter{
		LLM:          llmClient,
		SystemPrompt: p.UpsamplerSystem,
		Prompt:       p.Rewrite,
		Concurrency:  concurrency,
		Logger:       slog.Default(),
	}
	if r.SystemPrompt == "" {
		r.SystemPrompt = prompts.UpsamplerSystem
	}
	if r.Prompt == "" {
		r.Prompt = prompts.Rewrite
	}
	return r
}

// Rewrite issues one independent model call per exemplar. Failed calls are
// dropped, so the result holds between zero and len(exemplars) candidates,
// ordered by exemplar index.
func (r *Rewriter) Rewrite(ctx context.Context, basePrompt string, exemplars []model.Exemplar) ([]model.RewriteCandidate, error) {
	if strings.TrimSpace(basePrompt) == "" {
		return nil, model.ErrEmptyPrompt
	}
	if len(exemplars) == 0 {
		return nil, fmt.Errorf("%w: no exemplars given", model.ErrInvalidFanOut)
	}

	slots := make([]*model.RewriteCandidate, len(exemplars))

	var g errgroup.Group
	g.SetLimit(max(r.Concurrency, 1))
	for i, ex := range exemplars {
		g.Go(func() error {
			text, err := r.rewriteOne(ctx, basePrompt, ex)
			if err != nil {
				r.Logger.Warn("dropping rewrite candidate",
					"base_prompt", basePrompt,
					"error", &model.RewriteCallError{Index: i, Err: err})
				return nil
			}
			slots[i] = &model.RewriteCandidate{
				SourceExemplarIndex: i,
				Rationale:           ex.Rationale,
				Text:                text,
			}
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]model.RewriteCandidate, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	r.Logger.Debug("rewrite finished", "base_prompt", basePrompt, "candidates", len(candidates), "fan_out", len(exemplars))
	return candidates, nil
}

func (r *Rewriter) rewriteOne(ctx context.Context, basePrompt string, ex model.Exemplar) (string, error) {
	prompt := fmt.Sprintf(r.Prompt, ex.Rationale, ex.Caption, basePrompt)

	response, err := r.LLM.Complete(ctx, llm.Request{
		SystemPrompt: r.SystemPrompt,
		Prompt:       prompt,
		MaxTokens:    r.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate candidate: %w", err)
	}

	caption := common.CleanCaption(response)
	if caption == "" {
		return "", fmt.Errorf("model returned an empty caption")
	}
	return caption, nil
}
