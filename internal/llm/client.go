package llm

import (
	"context"
	"fmt"

	"github.com/agenthands/upsampler/internal/media"
)

const defaultMaxTokens = 1000

// Request is a single completion call. Prompt may embed images as data URIs;
// providers lift them out into image parts and send the remaining text.
type Request struct {
	SystemPrompt string
	Prompt       string
	Seed         *int
	MaxTokens    int
}

type LLMClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

// splitPrompt separates the plain text of a prompt from its embedded images.
func splitPrompt(prompt string) (string, []media.Image, error) {
	text, uris := media.SplitDataURIs(prompt)
	images := make([]media.Image, 0, len(uris))
	for _, uri := range uris {
		img, err := media.DecodeDataURI(uri)
		if err != nil {
			return "", nil, fmt.Errorf("embedded image: %w", err)
		}
		images = append(images, img)
	}
	return text, images, nil
}
