package selector

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
)

const (
	minCaptionWords = 15
	maxCaptionWords = 80
)

// Selector asks the model to compare rewrite candidates and produce the final caption.
type Selector struct {
	LLM          llm.LLMClient
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Logger       *slog.Logger
}

func NewSelector(llmClient llm.LLMClient, p config.Prompts) *Selector {
	s := &Selector{
		LLM:          llmClient,
		SystemPrompt: p.UpsamplerSystem,
		Prompt:       p.Compare,
		Logger:       slog.Default(),
	}
	if s.SystemPrompt == "" {
		s.SystemPrompt = prompts.UpsamplerSystem
	}
	if s.Prompt == "" {
		s.Prompt = prompts.Compare
	}
	return s
}

// Select makes a single compare call over all candidates. A response that is not
// a JSON object is used as the caption itself; a JSON object must carry a caption.
func (s *Selector) Select(ctx context.Context, basePrompt string, candidates []model.RewriteCandidate) (model.UpsampleResult, error) {
	if len(candidates) == 0 {
		return model.UpsampleResult{}, model.ErrNoCandidates
	}

	prompt := fmt.Sprintf(s.Prompt, basePrompt, renderCandidates(candidates))

	response, err := s.LLM.Complete(ctx, llm.Request{
		SystemPrompt: s.SystemPrompt,
		Prompt:       prompt,
		MaxTokens:    s.MaxTokens,
	})
	if err != nil {
		return model.UpsampleResult{}, fmt.Errorf("failed to compare candidates: %w", err)
	}

	var caption string
	if cmp, err := common.ParseJSON[model.Comparison](response); err == nil {
		caption = common.CleanCaption(cmp.Caption)
		s.Logger.Debug("comparison parsed", "rationale", cmp.Rationale)
	} else {
		caption = common.CleanCaption(response)
	}
	if caption == "" {
		return model.UpsampleResult{}, fmt.Errorf("comparison returned an empty caption")
	}

	if n := common.WordCount(caption); n < minCaptionWords || n > maxCaptionWords {
		s.Logger.Debug("final caption outside word bounds", "words", n, "base_prompt", basePrompt)
	}

	return model.UpsampleResult{
		FinalCaption: caption,
		BasePrompt:   basePrompt,
		Candidates:   len(candidates),
	}, nil
}

func renderCandidates(candidates []model.RewriteCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "Attempt %d (guided by the example %q):\n%s\n\n", i+1, c.Rationale, c.Text)
	}
	return b.String()
}
