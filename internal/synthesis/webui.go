package synthesis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const txt2imgPath = "/sdapi/v1/txt2img"

// WebUIClient talks to a Stable Diffusion WebUI (AUTOMATIC1111 / Forge) server.
type WebUIClient struct {
	baseURL string
	model   string
	sampler string
	http    *http.Client
}

func NewWebUIClient(baseURL, model, sampler string, httpClient *http.Client) *WebUIClient {
	if baseURL == "" {
		baseURL = "http://localhost:7860"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebUIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		sampler: sampler,
		http:    httpClient,
	}
}

type txt2imgRequest struct {
	Prompt           string         `json:"prompt"`
	NegativePrompt   string         `json:"negative_prompt,omitempty"`
	Steps            int            `json:"steps"`
	Width            int            `json:"width"`
	Height           int            `json:"height"`
	CfgScale         float64        `json:"cfg_scale"`
	Seed             int            `json:"seed"`
	BatchSize        int            `json:"batch_size"`
	SamplerName      string         `json:"sampler_name,omitempty"`
	OverrideSettings map[string]any `json:"override_settings,omitempty"`
}

func (c *WebUIClient) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	body := txt2imgRequest{
		Prompt:      req.Caption,
		Steps:       req.Steps,
		Width:       req.Width,
		Height:      req.Height,
		CfgScale:    req.GuidanceScale,
		Seed:        -1,
		BatchSize:   1,
		SamplerName: c.sampler,
	}
	if req.NegativePrompt != nil {
		body.NegativePrompt = *req.NegativePrompt
	}
	if c.model != "" {
		body.OverrideSettings = map[string]any{"sd_model_checkpoint": c.model}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+txt2imgPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "detail").String()
		if msg == "" {
			msg = gjson.GetBytes(raw, "error").String()
		}
		if msg == "" {
			msg = preview(raw)
		}
		return nil, fmt.Errorf("txt2img returned status %d: %s", resp.StatusCode, msg)
	}

	encoded := gjson.GetBytes(raw, "images.0").String()
	if encoded == "" {
		return nil, fmt.Errorf("txt2img response has no images")
	}
	// Some forks prefix the payload with a data URI header.
	if _, after, ok := strings.Cut(encoded, ";base64,"); ok {
		encoded = after
	}
	img, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode txt2img image: %w", err)
	}
	return img, nil
}

func preview(b []byte) string {
	s := string(b)
	if len(s) > 512 {
		s = s[:512] + "... [truncated]"
	}
	return s
}
