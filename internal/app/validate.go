package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/upsampler/internal/core/model"
)

// Outcome is one generate-and-judge pass.
type Outcome struct {
	Upsampled    bool                  `json:"upsampled"`
	FinalCaption string                `json:"final_caption"`
	Image        *model.GeneratedImage `json:"image,omitempty"`
	Judgement    *model.Judgement      `json:"judgement,omitempty"`
	Err          error                 `json:"-"`
}

func (o Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Validation compares the same prompt rendered with and without upsampling.
type Validation struct {
	BasePrompt string  `json:"base_prompt"`
	Plain      Outcome `json:"plain"`
	Upsampled  Outcome `json:"upsampled"`
}

// Validate generates basePrompt twice, as given and upsampled, and judges
// both images. Stage failures are reported on the outcomes.
func (a *App) Validate(ctx context.Context, basePrompt string, params model.GenerationParams) (Validation, error) {
	if strings.TrimSpace(basePrompt) == "" {
		return Validation{}, model.ErrEmptyPrompt
	}
	if err := params.Validate(); err != nil {
		return Validation{}, err
	}
	return Validation{
		BasePrompt: basePrompt,
		Plain:      a.generateAndJudge(ctx, basePrompt, false, params),
		Upsampled:  a.generateAndJudge(ctx, basePrompt, true, params),
	}, nil
}

// Generate renders basePrompt without judging it.
func (a *App) Generate(ctx context.Context, basePrompt string, upsample bool, params model.GenerationParams) (model.GeneratedImage, error) {
	if strings.TrimSpace(basePrompt) == "" {
		return model.GeneratedImage{}, model.ErrEmptyPrompt
	}
	return a.Pipeline.Predict(ctx, basePrompt, upsample, params)
}

func (a *App) generateAndJudge(ctx context.Context, basePrompt string, upsample bool, params model.GenerationParams) Outcome {
	out := Outcome{Upsampled: upsample}

	img, err := a.Pipeline.Predict(ctx, basePrompt, upsample, params)
	if err != nil {
		out.Err = fmt.Errorf("generate: %w", err)
		return out
	}
	out.Image = &img
	out.FinalCaption = img.FinalCaption

	j, err := a.Judge.Score(ctx, basePrompt, img, params.Seed, params.MaxRetries)
	if err != nil {
		out.Err = fmt.Errorf("judge: %w", err)
		return out
	}
	out.Judgement = &j
	return out
}
