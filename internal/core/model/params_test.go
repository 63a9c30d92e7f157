package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerationParamsDefaults(t *testing.T) {
	p, err := NewGenerationParams()
	require.NoError(t, err)

	assert.Equal(t, 50, p.NumInferenceSteps)
	assert.Equal(t, 1024, p.Width)
	assert.Equal(t, 1024, p.Height)
	assert.Equal(t, 7.0, p.GuidanceScale)
	assert.Nil(t, p.NegativePrompt)
	assert.Equal(t, 42, p.Seed)
	assert.Equal(t, 5, p.MaxRetries)
}

func TestNewGenerationParamsOptions(t *testing.T) {
	p, err := NewGenerationParams(
		WithSteps(30),
		WithSize(768, 512),
		WithGuidanceScale(5.5),
		WithNegativePrompt(StockNegativePrompt),
		WithSeed(7),
		WithMaxRetries(0),
	)
	require.NoError(t, err)

	assert.Equal(t, 30, p.NumInferenceSteps)
	assert.Equal(t, 768, p.Width)
	assert.Equal(t, 512, p.Height)
	require.NotNil(t, p.NegativePrompt)
	assert.Equal(t, StockNegativePrompt, *p.NegativePrompt)
	assert.Equal(t, 0, p.MaxRetries)

	p, err = NewGenerationParams(WithNegativePrompt(""))
	require.NoError(t, err)
	assert.Nil(t, p.NegativePrompt)
}

func TestNewGenerationParamsRejectsOutOfRange(t *testing.T) {
	cases := map[string]ParamOption{
		"num_inference_steps": WithSteps(0),
		"width":               WithSize(1020, 1024),
		"height":              WithSize(1024, 8192),
		"guidance_scale":      WithGuidanceScale(-1),
		"seed":                WithSeed(-3),
		"max_retries":         WithMaxRetries(21),
	}
	for field, opt := range cases {
		_, err := NewGenerationParams(opt)
		var perr *ParamError
		require.True(t, errors.As(err, &perr), field)
		assert.Equal(t, field, perr.Field)
	}

	for _, scale := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewGenerationParams(WithGuidanceScale(scale))
		var perr *ParamError
		require.True(t, errors.As(err, &perr), "guidance_scale %v", scale)
		assert.Equal(t, "guidance_scale", perr.Field)
	}
}

func TestGeneratedImageDataURI(t *testing.T) {
	img := GeneratedImage{Data: []byte("png")}
	assert.Equal(t, "data:image/png;base64,cG5n", img.DataURI())
}

func TestDatasetRowErrorUnwraps(t *testing.T) {
	cause := &JudgeUnavailableError{Attempts: 3, Err: errors.New("boom")}
	err := &DatasetRowError{Index: 1, BasePrompt: "b", Stage: StageJudge, Err: cause}

	var unavailable *JudgeUnavailableError
	assert.True(t, errors.As(err, &unavailable))
	assert.Equal(t, 3, unavailable.Attempts)
	assert.Contains(t, err.Error(), `"b"`)
}
