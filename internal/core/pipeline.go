package core

import (
	"context"
	"fmt"

	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/media"
	"github.com/agenthands/upsampler/internal/synthesis"
)

// Pipeline is the prediction path for one prompt: upsample, then synthesize.
type Pipeline struct {
	Upsampler   *Upsampler
	Synthesizer synthesis.Synthesizer
}

func NewPipeline(upsampler *Upsampler, synthesizer synthesis.Synthesizer) *Pipeline {
	return &Pipeline{
		Upsampler:   upsampler,
		Synthesizer: synthesizer,
	}
}

// Predict upsamples basePrompt (or passes it through) and renders the result.
func (p *Pipeline) Predict(ctx context.Context, basePrompt string, upsample bool, params model.GenerationParams) (model.GeneratedImage, error) {
	if err := params.Validate(); err != nil {
		return model.GeneratedImage{}, err
	}
	up, err := p.Upsampler.Upsample(ctx, basePrompt, upsample)
	if err != nil {
		return model.GeneratedImage{}, fmt.Errorf("upsample: %w", err)
	}
	return p.Synthesize(ctx, up, params)
}

// Synthesize renders an already upsampled caption. The returned image carries
// exactly the parameters sent to the backend.
func (p *Pipeline) Synthesize(ctx context.Context, up model.UpsampleResult, params model.GenerationParams) (model.GeneratedImage, error) {
	req := synthesis.Request{
		Caption:        up.FinalCaption,
		NegativePrompt: params.NegativePrompt,
		Steps:          params.NumInferenceSteps,
		Width:          params.Width,
		Height:         params.Height,
		GuidanceScale:  params.GuidanceScale,
	}

	data, err := p.Synthesizer.Synthesize(ctx, req)
	if err != nil {
		return model.GeneratedImage{}, &model.SynthesisError{Err: err}
	}
	if len(data) == 0 {
		return model.GeneratedImage{}, &model.SynthesisError{Err: fmt.Errorf("backend returned no image data")}
	}

	return model.GeneratedImage{
		Data:              data,
		MimeType:          media.MimePNG,
		BasePrompt:        up.BasePrompt,
		FinalCaption:      up.FinalCaption,
		NegativePrompt:    req.NegativePrompt,
		NumInferenceSteps: req.Steps,
		Width:             req.Width,
		Height:            req.Height,
		GuidanceScale:     req.GuidanceScale,
	}, nil
}
