package synthesis

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAIImageClient renders through the OpenAI images API. The API has no
// step count or guidance scale, so those fields are ignored.
type OpenAIImageClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIImageClient(apiKey, model, baseURL string, httpClient *http.Client) *OpenAIImageClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIImageClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIImageClient) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	prompt := req.Caption
	if req.NegativePrompt != nil && *req.NegativePrompt != "" {
		prompt += "\n\nAvoid: " + *req.NegativePrompt
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           fmt.Sprintf("%dx%d", req.Width, req.Height),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("image response has no data")
	}
	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
