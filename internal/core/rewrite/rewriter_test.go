package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/core/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testExemplars = []model.Exemplar{
	{Rationale: "ex-zero", Caption: "caption zero"},
	{Rationale: "ex-one", Caption: "caption one"},
	{Rationale: "ex-two", Caption: "caption two"},
}

func TestRewriteOneCandidatePerExemplar(t *testing.T) {
	mockLLM := &MockLLMClient{
		Responses: map[string]string{
			"ex-zero": "A green frog sitting on a lily pad",
			"ex-one":  `Caption: "A frog in the rain"`,
			"ex-two":  "A frog under a full moon",
		},
	}
	r := NewRewriter(mockLLM, config.Prompts{Rewrite: "%s | %s | %s"}, 2)

	candidates, err := r.Rewrite(context.Background(), "a frog", testExemplars)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	for i, c := range candidates {
		assert.Equal(t, i, c.SourceExemplarIndex)
		assert.Equal(t, testExemplars[i].Rationale, c.Rationale)
	}
	assert.Equal(t, "A green frog sitting on a lily pad", candidates[0].Text)
	assert.Equal(t, "A frog in the rain", candidates[1].Text)

	require.Len(t, mockLLM.Requests, 3)
	for _, req := range mockLLM.Requests {
		assert.Equal(t, prompts.UpsamplerSystem, req.SystemPrompt)
		assert.Contains(t, req.Prompt, "| a frog")
	}
}

func TestRewriteDropsFailedCalls(t *testing.T) {
	mockLLM := &MockLLMClient{
		Default: "A frog",
		Fail:    map[string]error{"ex-one": errors.New("timeout")},
		Responses: map[string]string{
			"ex-two": "```\n\n```",
		},
	}
	r := NewRewriter(mockLLM, config.Prompts{}, 4)

	candidates, err := r.Rewrite(context.Background(), "a frog", testExemplars)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0, candidates[0].SourceExemplarIndex)
}

func TestRewriteAllFailYieldsNoCandidates(t *testing.T) {
	mockLLM := &MockLLMClient{Fail: map[string]error{"": errors.New("down")}}
	r := NewRewriter(mockLLM, config.Prompts{}, 1)

	candidates, err := r.Rewrite(context.Background(), "a frog", testExemplars)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestRewriteRejectsBadInput(t *testing.T) {
	r := NewRewriter(&MockLLMClient{Default: "x"}, config.Prompts{}, 1)

	_, err := r.Rewrite(context.Background(), "  ", testExemplars)
	assert.ErrorIs(t, err, model.ErrEmptyPrompt)

	_, err = r.Rewrite(context.Background(), "a frog", nil)
	assert.ErrorIs(t, err, model.ErrInvalidFanOut)
}
