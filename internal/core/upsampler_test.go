package core

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/exemplar"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsampleDisabledIsPassThrough(t *testing.T) {
	mockLLM := &MockLLM{}
	u, err := NewUpsampler(mockLLM, exemplar.DefaultBank(), 3, config.Prompts{}, 2)
	require.NoError(t, err)

	res, err := u.Upsample(context.Background(), "a frgo", false)
	require.NoError(t, err)
	assert.Equal(t, "a frgo", res.FinalCaption)
	assert.Equal(t, "a frgo", res.BasePrompt)
	assert.Zero(t, mockLLM.calls())
}

func TestUpsampleRewritesThenCompares(t *testing.T) {
	mockLLM := &MockLLM{
		Rewrite: func(string) (string, error) { return "A frog on a lily pad", nil },
		Compare: `{"rationale": "merged", "caption": "A bright green frog resting on a lily pad at dawn"}`,
	}
	u, err := NewUpsampler(mockLLM, exemplar.DefaultBank(), 4, config.Prompts{}, 2)
	require.NoError(t, err)
	require.Len(t, u.Exemplars, 4)

	res, err := u.Upsample(context.Background(), "a frog", true)
	require.NoError(t, err)
	assert.Equal(t, "A bright green frog resting on a lily pad at dawn", res.FinalCaption)
	assert.Equal(t, 4, res.Candidates)
	assert.False(t, res.Degraded)
	assert.Equal(t, 5, mockLLM.calls(), "four rewrites and one comparison")
}

func TestUpsampleDegradesWhenAllRewritesFail(t *testing.T) {
	mockLLM := &MockLLM{
		Rewrite: func(string) (string, error) { return "", errors.New("model offline") },
		Compare: "unused",
	}
	u, err := NewUpsampler(mockLLM, exemplar.DefaultBank(), 3, config.Prompts{}, 3)
	require.NoError(t, err)

	res, err := u.Upsample(context.Background(), "a frog", true)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "a frog", res.FinalCaption)
	assert.Equal(t, 3, mockLLM.calls(), "no comparison call without candidates")
}

func TestUpsampleCancelledIsNotDegraded(t *testing.T) {
	mockLLM := &MockLLM{
		Rewrite: func(string) (string, error) { return "", context.Canceled },
	}
	u, err := NewUpsampler(mockLLM, exemplar.DefaultBank(), 2, config.Prompts{}, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = u.Upsample(ctx, "a frog", true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpsampleIsIdempotentWithDeterministicModel(t *testing.T) {
	mockLLM := &MockLLM{
		Rewrite: func(p string) (string, error) { return "A frog in a pond", nil },
		Compare: `{"caption": "A frog in a quiet pond"}`,
	}
	u, err := NewUpsampler(mockLLM, exemplar.DefaultBank(), 11, config.Prompts{}, 4)
	require.NoError(t, err)

	first, err := u.Upsample(context.Background(), "a frog", true)
	require.NoError(t, err)
	second, err := u.Upsample(context.Background(), "a frog", true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewUpsamplerRejectsBadFanOut(t *testing.T) {
	_, err := NewUpsampler(&MockLLM{}, exemplar.DefaultBank(), 0, config.Prompts{}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidFanOut)

	_, err = NewUpsampler(&MockLLM{}, exemplar.DefaultBank(), 12, config.Prompts{}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidFanOut)

	_, err = NewUpsampler(nil, exemplar.DefaultBank(), 1, config.Prompts{}, 1)
	assert.Error(t, err)
}
