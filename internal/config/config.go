package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/pelletier/go-toml/v2"
)

// Prompts override the built-in prompt templates when non-empty.
type Prompts struct {
	UpsamplerSystem string `toml:"upsampler_system"`
	Rewrite         string `toml:"rewrite"`
	Compare         string `toml:"compare"`
	JudgeSystem     string `toml:"judge_system"`
	Judge           string `toml:"judge"`
}

type LLMConfig struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	MaxTokens         int     `toml:"max_tokens"`
}

type JudgeConfig struct {
	LLM         LLMConfig `toml:"llm"`
	MaxRetries  int       `toml:"max_retries"`
	Seed        int       `toml:"seed"`
	BaseDelayMS int       `toml:"base_delay_ms"`
	MaxDelayMS  int       `toml:"max_delay_ms"`
}

type DiffusionConfig struct {
	Backend string `toml:"backend"`
	BaseURL string `toml:"base_url"`
	// APIKey is only used by the openai backend.
	APIKey string `toml:"api_key"`
	// Model optionally selects a checkpoint on the backend.
	Model          string `toml:"model"`
	SamplerName    string `toml:"sampler_name"`
	Exclusive      bool   `toml:"exclusive"`
	MaxConcurrent  int    `toml:"max_concurrent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type GenerationConfig struct {
	NumInferenceSteps int     `toml:"num_inference_steps"`
	// ImageSize sets both dimensions when non-zero.
	ImageSize              int     `toml:"image_size"`
	Width                  int     `toml:"width"`
	Height                 int     `toml:"height"`
	GuidanceScale          float64 `toml:"guidance_scale"`
	NegativePrompt         string  `toml:"negative_prompt"`
	UseStockNegativePrompt bool    `toml:"use_stock_negative_prompt"`
}

type UpsamplingConfig struct {
	Enabled bool `toml:"enabled"`
	FanOut  int  `toml:"fan_out"`
}

type ConcurrencyConfig struct {
	Rows       int `toml:"rows"`
	Candidates int `toml:"candidates"`
}

type TrackerConfig struct {
	Backend    string `toml:"backend"`
	Project    string `toml:"project"`
	Entity     string `toml:"entity"`
	SQLitePath string `toml:"sqlite_path"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Judge       JudgeConfig       `toml:"judge"`
	Diffusion   DiffusionConfig   `toml:"diffusion"`
	Generation  GenerationConfig  `toml:"generation"`
	Upsampling  UpsamplingConfig  `toml:"upsampling"`
	Prompts     Prompts           `toml:"prompts"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Tracker     TrackerConfig     `toml:"tracker"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Log         LogConfig         `toml:"log"`
	// Exemplars replaces the built-in exemplar bank when set.
	Exemplars []model.Exemplar `toml:"exemplars"`
}

var trackerBackends = map[string]bool{"none": true, "log": true, "sqlite": true, "memgraph": true}

// Default returns a complete configuration for a local setup: an
// Ollama-served upsampler, an OpenAI judge and a Stable Diffusion WebUI.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "gpt-oss:latest",
			BaseURL:  "http://localhost:11434",
		},
		Judge: JudgeConfig{
			LLM: LLMConfig{
				Provider: "openai",
				Model:    "gpt-4-turbo",
			},
			MaxRetries:  model.DefaultMaxRetries,
			Seed:        model.DefaultJudgeSeed,
			BaseDelayMS: 500,
			MaxDelayMS:  30_000,
		},
		Diffusion: DiffusionConfig{
			Backend:        "webui",
			BaseURL:        "http://localhost:7860",
			Exclusive:      true,
			MaxConcurrent:  1,
			TimeoutSeconds: 300,
		},
		Generation: GenerationConfig{
			NumInferenceSteps: model.DefaultInferenceSteps,
			ImageSize:         model.DefaultImageSize,
			GuidanceScale:     model.DefaultGuidanceScale,
		},
		Upsampling: UpsamplingConfig{
			Enabled: true,
			FanOut:  11,
		},
		Concurrency: ConcurrencyConfig{
			Rows:       4,
			Candidates: 4,
		},
		Tracker: TrackerConfig{
			Backend:    "log",
			Project:    "diffusion-prompt-upsample",
			SQLitePath: "runs.db",
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides selected settings from environment variables.
func (c *Config) ApplyEnv() {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")

	setString(&c.Judge.LLM.Provider, "JUDGE_PROVIDER")
	setString(&c.Judge.LLM.Model, "JUDGE_MODEL")
	setString(&c.Judge.LLM.APIKey, "JUDGE_API_KEY")
	setString(&c.Judge.LLM.BaseURL, "JUDGE_BASE_URL")
	// The judge falls back to the shared OpenAI key.
	if c.Judge.LLM.APIKey == "" && strings.EqualFold(c.Judge.LLM.Provider, "openai") {
		c.Judge.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	setString(&c.Diffusion.Backend, "DIFFUSION_BACKEND")
	setString(&c.Diffusion.BaseURL, "DIFFUSION_BASE_URL")
	setString(&c.Diffusion.APIKey, "DIFFUSION_API_KEY")
	if c.Diffusion.APIKey == "" && strings.EqualFold(c.Diffusion.Backend, "openai") {
		c.Diffusion.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v, err := strconv.ParseBool(os.Getenv("DIFFUSION_EXCLUSIVE")); err == nil {
		c.Diffusion.Exclusive = v
	}

	setString(&c.Tracker.Backend, "TRACKER_BACKEND")
	setString(&c.Tracker.Entity, "TRACKER_ENTITY")
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// GenerationParams builds validated generation parameters from the generation and judge sections.
func (c *Config) GenerationParams() (model.GenerationParams, error) {
	g := c.Generation
	opts := []model.ParamOption{
		model.WithSteps(g.NumInferenceSteps),
		model.WithGuidanceScale(g.GuidanceScale),
		model.WithSeed(c.Judge.Seed),
		model.WithMaxRetries(c.Judge.MaxRetries),
	}
	switch {
	case g.Width > 0 || g.Height > 0:
		opts = append(opts, model.WithSize(g.Width, g.Height))
	case g.ImageSize > 0:
		opts = append(opts, model.WithImageSize(g.ImageSize))
	}
	switch {
	case g.NegativePrompt != "":
		opts = append(opts, model.WithNegativePrompt(g.NegativePrompt))
	case g.UseStockNegativePrompt:
		opts = append(opts, model.WithNegativePrompt(model.StockNegativePrompt))
	}
	return model.NewGenerationParams(opts...)
}

// RunName is the tracker project, prefixed with the entity when one is set.
func (c *Config) RunName() string {
	if c.Tracker.Entity == "" {
		return c.Tracker.Project
	}
	return c.Tracker.Entity + "/" + c.Tracker.Project
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Upsampling.FanOut <= 0 {
		return fmt.Errorf("%w: upsampling.fan_out must be positive, got %d", model.ErrInvalidFanOut, c.Upsampling.FanOut)
	}
	if c.Concurrency.Rows < 1 {
		return fmt.Errorf("concurrency.rows must be at least 1, got %d", c.Concurrency.Rows)
	}
	if c.Concurrency.Candidates < 1 {
		return fmt.Errorf("concurrency.candidates must be at least 1, got %d", c.Concurrency.Candidates)
	}
	if !c.Diffusion.Exclusive && c.Diffusion.MaxConcurrent < 1 {
		return fmt.Errorf("diffusion.max_concurrent must be at least 1, got %d", c.Diffusion.MaxConcurrent)
	}
	if !trackerBackends[strings.ToLower(c.Tracker.Backend)] {
		return fmt.Errorf("unsupported tracker backend: %s", c.Tracker.Backend)
	}
	if _, err := c.GenerationParams(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	return nil
}
