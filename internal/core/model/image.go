package model

import (
	"github.com/agenthands/upsampler/internal/media"
)

// GeneratedImage is an encoded image plus the exact parameters that produced it.
type GeneratedImage struct {
	Data              []byte  `json:"-"`
	MimeType          string  `json:"mimetype"`
	BasePrompt        string  `json:"base_prompt"`
	FinalCaption      string  `json:"final_caption"`
	NegativePrompt    *string `json:"negative_prompt,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

// DataURI returns the image as data:<mimetype>;base64,<payload>.
func (g GeneratedImage) DataURI() string {
	mime := g.MimeType
	if mime == "" {
		mime = media.MimePNG
	}
	return media.EncodeDataURI(mime, g.Data)
}
