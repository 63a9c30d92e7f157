package model

import (
	"fmt"
	"math"
)

// StockNegativePrompt steers diffusion models away from common artifacts.
const StockNegativePrompt = "frame, border, 2d, ugly, static, dull, monochrome, distorted face, deformed fingers, scary, horror, nightmare, deformed lips, deformed eyes, deformed hands, deformed legs, impossible physics, absurdly placed objects"

const (
	DefaultInferenceSteps = 50
	DefaultImageSize      = 1024
	DefaultGuidanceScale  = 7.0
	DefaultJudgeSeed      = 42
	DefaultMaxRetries     = 5

	MinInferenceSteps = 1
	MaxInferenceSteps = 500
	MinImageSize      = 64
	MaxImageSize      = 4096
	MaxGuidanceScale  = 50.0
	MaxJudgeRetries   = 20
)

// GenerationParams is the full set of knobs for one synthesize+judge pass.
type GenerationParams struct {
	NumInferenceSteps int     `json:"num_inference_steps" toml:"num_inference_steps"`
	Width             int     `json:"width" toml:"width"`
	Height            int     `json:"height" toml:"height"`
	GuidanceScale     float64 `json:"guidance_scale" toml:"guidance_scale"`
	NegativePrompt    *string `json:"negative_prompt,omitempty" toml:"negative_prompt,omitempty"`
	Seed              int     `json:"seed" toml:"seed"`
	MaxRetries        int     `json:"max_retries" toml:"max_retries"`
}

// ParamOption mutates GenerationParams during construction.
type ParamOption func(*GenerationParams)

// DefaultGenerationParams returns the documented defaults.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		NumInferenceSteps: DefaultInferenceSteps,
		Width:             DefaultImageSize,
		Height:            DefaultImageSize,
		GuidanceScale:     DefaultGuidanceScale,
		Seed:              DefaultJudgeSeed,
		MaxRetries:        DefaultMaxRetries,
	}
}

// NewGenerationParams applies opts over the defaults and validates the result.
func NewGenerationParams(opts ...ParamOption) (GenerationParams, error) {
	p := DefaultGenerationParams()
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.Validate(); err != nil {
		return GenerationParams{}, err
	}
	return p, nil
}

func WithSteps(n int) ParamOption {
	return func(p *GenerationParams) { p.NumInferenceSteps = n }
}

// WithImageSize sets a square output size.
func WithImageSize(size int) ParamOption {
	return func(p *GenerationParams) {
		p.Width = size
		p.Height = size
	}
}

func WithSize(width, height int) ParamOption {
	return func(p *GenerationParams) {
		p.Width = width
		p.Height = height
	}
}

func WithGuidanceScale(scale float64) ParamOption {
	return func(p *GenerationParams) { p.GuidanceScale = scale }
}

// WithNegativePrompt sets the negative prompt; an empty string clears it.
func WithNegativePrompt(prompt string) ParamOption {
	return func(p *GenerationParams) {
		if prompt == "" {
			p.NegativePrompt = nil
			return
		}
		p.NegativePrompt = &prompt
	}
}

func WithSeed(seed int) ParamOption {
	return func(p *GenerationParams) { p.Seed = seed }
}

func WithMaxRetries(n int) ParamOption {
	return func(p *GenerationParams) { p.MaxRetries = n }
}

// Validate checks every field against its documented range.
func (p GenerationParams) Validate() error {
	if p.NumInferenceSteps < MinInferenceSteps || p.NumInferenceSteps > MaxInferenceSteps {
		return &ParamError{Field: "num_inference_steps", Value: p.NumInferenceSteps,
			Reason: fmt.Sprintf("must be within [%d, %d]", MinInferenceSteps, MaxInferenceSteps)}
	}
	if err := validateSize("width", p.Width); err != nil {
		return err
	}
	if err := validateSize("height", p.Height); err != nil {
		return err
	}
	if math.IsNaN(p.GuidanceScale) || p.GuidanceScale < 0 || p.GuidanceScale > MaxGuidanceScale {
		return &ParamError{Field: "guidance_scale", Value: p.GuidanceScale,
			Reason: fmt.Sprintf("must be within [0, %g]", MaxGuidanceScale)}
	}
	if p.Seed < 0 {
		return &ParamError{Field: "seed", Value: p.Seed, Reason: "must be non-negative"}
	}
	if p.MaxRetries < 0 || p.MaxRetries > MaxJudgeRetries {
		return &ParamError{Field: "max_retries", Value: p.MaxRetries,
			Reason: fmt.Sprintf("must be within [0, %d]", MaxJudgeRetries)}
	}
	return nil
}

func validateSize(field string, v int) error {
	if v < MinImageSize || v > MaxImageSize {
		return &ParamError{Field: field, Value: v,
			Reason: fmt.Sprintf("must be within [%d, %d]", MinImageSize, MaxImageSize)}
	}
	if v%8 != 0 {
		return &ParamError{Field: field, Value: v, Reason: "must be a multiple of 8"}
	}
	return nil
}
