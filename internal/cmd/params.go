package cmd

import (
	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/spf13/cobra"
)

// paramFlags override the [generation] and [judge] settings for one invocation.
type paramFlags struct {
	steps          int
	imageSize      int
	width          int
	height         int
	guidanceScale  float64
	negativePrompt string
	stockNegative  bool
	seed           int
	maxRetries     int
}

func addParamFlags(cmd *cobra.Command, p *paramFlags) {
	f := cmd.Flags()
	f.IntVar(&p.steps, "steps", model.DefaultInferenceSteps, "number of diffusion inference steps")
	f.IntVar(&p.imageSize, "image-size", model.DefaultImageSize, "square image size in pixels")
	f.IntVar(&p.width, "width", 0, "image width in pixels (overrides --image-size)")
	f.IntVar(&p.height, "height", 0, "image height in pixels (overrides --image-size)")
	f.Float64Var(&p.guidanceScale, "guidance-scale", model.DefaultGuidanceScale, "classifier-free guidance scale")
	f.StringVar(&p.negativePrompt, "negative-prompt", "", "negative prompt sent to the diffusion backend")
	f.BoolVar(&p.stockNegative, "stock-negative-prompt", false, "use the built-in negative prompt")
	f.IntVar(&p.seed, "judge-seed", model.DefaultJudgeSeed, "seed forwarded to the judge model")
	f.IntVar(&p.maxRetries, "max-retries", model.DefaultMaxRetries, "judge retries on transient failures")
}

// apply writes the flags the user set onto cfg and returns the validated parameters.
func (p *paramFlags) apply(cmd *cobra.Command, cfg *config.Config) (model.GenerationParams, error) {
	f := cmd.Flags()
	g := &cfg.Generation
	if f.Changed("steps") {
		g.NumInferenceSteps = p.steps
	}
	if f.Changed("image-size") {
		g.ImageSize = p.imageSize
		g.Width, g.Height = 0, 0
	}
	if f.Changed("width") {
		g.Width = p.width
	}
	if f.Changed("height") {
		g.Height = p.height
	}
	if (g.Width > 0) != (g.Height > 0) {
		// One explicit dimension: the other follows the square size.
		size := g.ImageSize
		if size <= 0 {
			size = model.DefaultImageSize
		}
		if g.Width == 0 {
			g.Width = size
		}
		if g.Height == 0 {
			g.Height = size
		}
	}
	if f.Changed("guidance-scale") {
		g.GuidanceScale = p.guidanceScale
	}
	if f.Changed("negative-prompt") {
		g.NegativePrompt = p.negativePrompt
	}
	if f.Changed("stock-negative-prompt") {
		g.UseStockNegativePrompt = p.stockNegative
	}
	if f.Changed("judge-seed") {
		cfg.Judge.Seed = p.seed
	}
	if f.Changed("max-retries") {
		cfg.Judge.MaxRetries = p.maxRetries
	}
	return cfg.GenerationParams()
}
