package synthesis

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agenthands/upsampler/internal/config"
)

// Request carries everything a backend needs to render one image.
type Request struct {
	Caption string
	// NegativePrompt is omitted from the backend call when nil.
	NegativePrompt *string
	Steps          int
	Width          int
	Height         int
	GuidanceScale  float64
}

// Synthesizer turns a caption into encoded image bytes (PNG).
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// NewSynthesizer builds the configured backend behind a Gate. An exclusive
// backend admits one synthesis at a time.
func NewSynthesizer(cfg config.DiffusionConfig) (*Gate, error) {
	httpClient := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}

	var backend Synthesizer
	switch strings.ToLower(cfg.Backend) {
	case "webui", "":
		backend = NewWebUIClient(cfg.BaseURL, cfg.Model, cfg.SamplerName, httpClient)
	case "openai":
		backend = NewOpenAIImageClient(cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient)
	default:
		return nil, fmt.Errorf("unsupported diffusion backend: %s", cfg.Backend)
	}

	capacity := cfg.MaxConcurrent
	if cfg.Exclusive || capacity < 1 {
		capacity = 1
	}
	return NewGate(backend, capacity), nil
}
