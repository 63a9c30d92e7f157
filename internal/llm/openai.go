package llm

import (
	"context"
	"fmt"

	"github.com/agenthands/upsampler/internal/media"
	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey string, model string, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIClient{
		client: client,
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages, err := buildOpenAIMessages(req)
	if err != nil {
		return "", err
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: req.maxTokens(),
		Seed:      req.Seed,
	})
	if err != nil {
		return "", err
	}
	// Prefer a completed choice over a truncated one.
	for _, choice := range resp.Choices {
		if choice.FinishReason == openai.FinishReasonStop {
			return choice.Message.Content, nil
		}
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("no response choices")
}

// buildOpenAIMessages mirrors the multimodal chat layout: optional system
// message, then one user message holding the text part followed by image parts.
func buildOpenAIMessages(req Request) ([]openai.ChatCompletionMessage, error) {
	text, images, err := splitPrompt(req.Prompt)
	if err != nil {
		return nil, err
	}

	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	if len(images) == 0 {
		return append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		}), nil
	}

	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: text}}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    media.EncodeDataURI(img.MimeType, img.Data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}), nil
}
