package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientProviders(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient(ctx, config.LLMConfig{Provider: "OpenAI", Model: "gpt-4o", APIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: "claude", Model: "claude-3-5-sonnet-latest", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: "ollama", Model: "llava"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(ctx, config.LLMConfig{Provider: "openai", Model: "gpt-4o", RequestsPerSecond: 2})
	require.NoError(t, err)
	assert.IsType(t, &RateLimitedClient{}, c)

	_, err = NewClient(ctx, config.LLMConfig{Provider: "weave"})
	assert.Error(t, err)
}

type echoClient struct {
	calls int
	err   error
}

func (e *echoClient) Complete(ctx context.Context, req Request) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return req.Prompt, nil
}

func TestRateLimitedClientDelegates(t *testing.T) {
	inner := &echoClient{}
	c := NewRateLimitedClient(inner, 1000, 0)

	out, err := c.Complete(context.Background(), Request{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "ping", out)
	assert.Equal(t, 1, inner.calls)

	inner.err = errors.New("upstream down")
	_, err = c.Complete(context.Background(), Request{Prompt: "ping"})
	assert.EqualError(t, err, "upstream down")
}

func TestRateLimitedClientHonoursContext(t *testing.T) {
	inner := &echoClient{}
	c := NewRateLimitedClient(inner, 0.001, 1)

	_, err := c.Complete(context.Background(), Request{Prompt: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Complete(ctx, Request{Prompt: "second"})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
