package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core"
	"github.com/agenthands/upsampler/internal/core/exemplar"
	"github.com/agenthands/upsampler/internal/core/judge"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/core/runner"
	"github.com/agenthands/upsampler/internal/llm"
	"github.com/agenthands/upsampler/internal/retry"
	"github.com/agenthands/upsampler/internal/synthesis"
	"github.com/agenthands/upsampler/internal/tracker"
)

// App holds every component of a configured process.
type App struct {
	Config    *config.Config
	Upsampler *core.Upsampler
	Pipeline  *core.Pipeline
	Judge     *judge.Judge
	Runner    *runner.Runner
	Tracker   tracker.Tracker
	Gate      *synthesis.Gate

	closers []func() error
}

// Components are the external collaborators. New builds the missing ones from config.
type Components struct {
	UpsamplerLLM llm.LLMClient
	JudgeLLM     llm.LLMClient
	Synthesizer  synthesis.Synthesizer
	Tracker      tracker.Tracker
}

// New validates cfg and wires the application.
func New(ctx context.Context, cfg *config.Config, c Components) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a := &App{Config: cfg}

	bank := exemplar.DefaultBank()
	if len(cfg.Exemplars) > 0 {
		b, err := exemplar.NewBank(cfg.Exemplars)
		if err != nil {
			return nil, err
		}
		bank = b
	}

	var err error
	if c.UpsamplerLLM == nil {
		if c.UpsamplerLLM, err = a.newLLM(ctx, cfg.LLM); err != nil {
			return nil, fmt.Errorf("upsampler llm: %w", err)
		}
	}
	if c.JudgeLLM == nil {
		if c.JudgeLLM, err = a.newLLM(ctx, cfg.Judge.LLM); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("judge llm: %w", err)
		}
	}

	if c.Synthesizer != nil {
		a.Gate = synthesis.NewGate(c.Synthesizer, gateCapacity(cfg.Diffusion))
	} else if a.Gate, err = synthesis.NewSynthesizer(cfg.Diffusion); err != nil {
		a.Close(ctx)
		return nil, err
	}

	if c.Tracker == nil {
		if c.Tracker, err = tracker.New(ctx, cfg); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("tracker: %w", err)
		}
	}
	a.Tracker = c.Tracker
	a.closers = append(a.closers, func() error { return c.Tracker.Close(context.Background()) })

	a.Upsampler, err = core.NewUpsampler(c.UpsamplerLLM, bank, cfg.Upsampling.FanOut, cfg.Prompts, cfg.Concurrency.Candidates)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Upsampler.Rewriter.MaxTokens = cfg.LLM.MaxTokens
	a.Upsampler.Selector.MaxTokens = cfg.LLM.MaxTokens

	a.Pipeline = core.NewPipeline(a.Upsampler, a.Gate)

	a.Judge = judge.NewJudge(c.JudgeLLM, cfg.Prompts, retry.Backoff{
		Base: time.Duration(cfg.Judge.BaseDelayMS) * time.Millisecond,
		Max:  time.Duration(cfg.Judge.MaxDelayMS) * time.Millisecond,
	})
	a.Judge.MaxTokens = cfg.Judge.LLM.MaxTokens

	a.Runner = runner.NewRunner(a.Pipeline, a.Judge, a.Tracker, cfg.Concurrency.Rows)
	return a, nil
}

func gateCapacity(cfg config.DiffusionConfig) int {
	if cfg.Exclusive {
		return 1
	}
	return cfg.MaxConcurrent
}

func (a *App) newLLM(ctx context.Context, cfg config.LLMConfig) (llm.LLMClient, error) {
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := client.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}
	return client, nil
}

// Close releases LM clients and the tracker.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to release resources", "error", err)
		return err
	}
	return nil
}

// RunOptions builds runner options with the run attributes derived from config.
func (a *App) RunOptions(upsample bool, params model.GenerationParams) runner.RunOptions {
	return runner.RunOptions{
		UpsampleEnabled: upsample,
		Params:          params,
		Name:            a.Config.RunName(),
		Attributes: map[string]any{
			"upsample_prompt":           upsample,
			"use_stock_negative_prompt": params.NegativePrompt != nil && *params.NegativePrompt == model.StockNegativePrompt,
			"exclusive_gate":            a.Gate.Exclusive(),
			"fan_out":                   len(a.Upsampler.Exemplars),
			"llm_model":                 a.Config.LLM.Model,
			"judge_model":               a.Config.Judge.LLM.Model,
		},
	}
}

// Evaluate runs rows through the runner with the given settings.
func (a *App) Evaluate(ctx context.Context, rows []model.DatasetRow, upsample bool, params model.GenerationParams) (*runner.Report, error) {
	return a.Runner.Run(ctx, rows, a.RunOptions(upsample, params))
}
