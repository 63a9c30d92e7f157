package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockLLMClient struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockLLMClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.Prompts = append(m.Prompts, req.Prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func TestSelectParsesComparison(t *testing.T) {
	mockLLM := &MockLLMClient{
		Response: "Here you go:\n```json\n{\"rationale\": \"kept the rain\", \"caption\": \"A small green frog sits in the rain\"}\n```",
	}
	s := NewSelector(mockLLM, config.Prompts{})

	candidates := []model.RewriteCandidate{
		{SourceExemplarIndex: 0, Rationale: "a man holding a sword", Text: "A frog in the rain"},
		{SourceExemplarIndex: 4, Rationale: "a frog", Text: "A frog on a lily pad"},
	}
	res, err := s.Select(context.Background(), "a frog", candidates)
	require.NoError(t, err)

	assert.Equal(t, "A small green frog sits in the rain", res.FinalCaption)
	assert.Equal(t, "a frog", res.BasePrompt)
	assert.Equal(t, 2, res.Candidates)
	assert.False(t, res.Degraded)

	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "A frog in the rain")
	assert.Contains(t, mockLLM.Prompts[0], "A frog on a lily pad")
	assert.Contains(t, mockLLM.Prompts[0], `"a man holding a sword"`)
}

func TestSelectSingleCandidatePassThrough(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "A frog"}
	s := NewSelector(mockLLM, config.Prompts{})

	res, err := s.Select(context.Background(), "a frog", []model.RewriteCandidate{{Text: "A frog"}})
	require.NoError(t, err)
	assert.Equal(t, "A frog", res.FinalCaption)
}

func TestSelectNoCandidates(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "unused"}
	s := NewSelector(mockLLM, config.Prompts{})

	_, err := s.Select(context.Background(), "a frog", nil)
	assert.ErrorIs(t, err, model.ErrNoCandidates)
	assert.Empty(t, mockLLM.Prompts)
}

func TestSelectErrors(t *testing.T) {
	candidates := []model.RewriteCandidate{{Text: "A frog"}}

	s := NewSelector(&MockLLMClient{Err: errors.New("boom")}, config.Prompts{})
	_, err := s.Select(context.Background(), "a frog", candidates)
	assert.ErrorContains(t, err, "boom")

	s = NewSelector(&MockLLMClient{Response: `""`}, config.Prompts{})
	_, err = s.Select(context.Background(), "a frog", candidates)
	assert.Error(t, err)
}

func TestSelectRejectsComparisonWithoutCaption(t *testing.T) {
	for _, response := range []string{
		`{"rationale": "none of these fit", "caption": ""}`,
		"```json\n{\"rationale\": \"x\", \"caption\": \"   \"}\n```",
	} {
		s := NewSelector(&MockLLMClient{Response: response}, config.Prompts{})

		res, err := s.Select(context.Background(), "a frog", []model.RewriteCandidate{{Text: "A frog"}})
		require.Error(t, err, response)
		assert.Contains(t, err.Error(), "empty caption")
		assert.Empty(t, res.FinalCaption)
	}
}
