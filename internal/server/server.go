package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/agenthands/upsampler/internal/app"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/core/runner"
	"github.com/agenthands/upsampler/internal/media"
	"github.com/gin-gonic/gin"
)

type Server struct {
	App *app.App
	// Defaults are the configured generation parameters; requests override them field by field.
	Defaults model.GenerationParams
}

func NewServer(a *app.App) (*Server, error) {
	params, err := a.Config.GenerationParams()
	if err != nil {
		return nil, err
	}
	return &Server{App: a, Defaults: params}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)
	r.POST("/upsample", s.Upsample)
	r.POST("/generate", s.Generate)
	r.POST("/judge", s.Judge)
	r.POST("/evaluate", s.Evaluate)
	r.POST("/validate", s.Validate)

	return r
}

// ParamsRequest overrides individual generation parameters.
type ParamsRequest struct {
	NumInferenceSteps      *int     `json:"num_inference_steps"`
	ImageSize              *int     `json:"image_size"`
	Width                  *int     `json:"width"`
	Height                 *int     `json:"height"`
	GuidanceScale          *float64 `json:"guidance_scale"`
	NegativePrompt         *string  `json:"negative_prompt"`
	UseStockNegativePrompt bool     `json:"use_stock_negative_prompt"`
	Seed                   *int     `json:"seed"`
	MaxRetries             *int     `json:"max_retries"`
}

func (p *ParamsRequest) apply(base model.GenerationParams) (model.GenerationParams, error) {
	if p == nil {
		return base, nil
	}
	out := base
	if p.NumInferenceSteps != nil {
		out.NumInferenceSteps = *p.NumInferenceSteps
	}
	if p.ImageSize != nil {
		out.Width, out.Height = *p.ImageSize, *p.ImageSize
	}
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	if p.GuidanceScale != nil {
		out.GuidanceScale = *p.GuidanceScale
	}
	switch {
	case p.NegativePrompt != nil && *p.NegativePrompt == "":
		out.NegativePrompt = nil
	case p.NegativePrompt != nil:
		neg := *p.NegativePrompt
		out.NegativePrompt = &neg
	case p.UseStockNegativePrompt:
		neg := model.StockNegativePrompt
		out.NegativePrompt = &neg
	}
	if p.Seed != nil {
		out.Seed = *p.Seed
	}
	if p.MaxRetries != nil {
		out.MaxRetries = *p.MaxRetries
	}
	return out, out.Validate()
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type UpsampleRequest struct {
	BasePrompt string `json:"base_prompt" binding:"required"`
	// Enabled defaults to true.
	Enabled *bool `json:"enabled"`
}

func (s *Server) Upsample(c *gin.Context) {
	var req UpsampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	enabled := req.Enabled == nil || *req.Enabled

	res, err := s.App.Upsampler.Upsample(c.Request.Context(), req.BasePrompt, enabled)
	if err != nil {
		s.fail(c, "upsample", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type GenerateRequest struct {
	BasePrompt string         `json:"base_prompt" binding:"required"`
	Upsample   bool           `json:"upsample"`
	Params     *ParamsRequest `json:"params"`
}

type imageResponse struct {
	model.GeneratedImage
	Image string `json:"image"`
}

func (s *Server) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	params, err := req.Params.apply(s.Defaults)
	if err != nil {
		s.fail(c, "generate", err)
		return
	}

	img, err := s.App.Generate(c.Request.Context(), req.BasePrompt, req.Upsample, params)
	if err != nil {
		s.fail(c, "generate", err)
		return
	}
	c.JSON(http.StatusOK, imageResponse{GeneratedImage: img, Image: img.DataURI()})
}

type JudgeRequest struct {
	BasePrompt string `json:"base_prompt" binding:"required"`
	// Image is a data:image/...;base64 URI.
	Image      string `json:"image" binding:"required"`
	Seed       *int   `json:"seed"`
	MaxRetries *int   `json:"max_retries"`
}

func (s *Server) Judge(c *gin.Context) {
	var req JudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	decoded, err := media.DecodeDataURI(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params, err := (&ParamsRequest{Seed: req.Seed, MaxRetries: req.MaxRetries}).apply(s.Defaults)
	if err != nil {
		s.fail(c, "judge", err)
		return
	}

	img := model.GeneratedImage{Data: decoded.Data, MimeType: decoded.MimeType, BasePrompt: req.BasePrompt}
	j, err := s.App.Judge.Score(c.Request.Context(), req.BasePrompt, img, params.Seed, params.MaxRetries)
	if err != nil {
		s.fail(c, "judge", err)
		return
	}
	c.JSON(http.StatusOK, j)
}

type EvaluateRequest struct {
	Rows []model.DatasetRow `json:"rows"`
	// Prompts is shorthand for rows without categories.
	Prompts  []string       `json:"prompts"`
	Upsample bool           `json:"upsample"`
	Params   *ParamsRequest `json:"params"`
}

type recordResponse struct {
	model.EvaluationRecord
	Error string `json:"error,omitempty"`
}

type reportResponse struct {
	RunID   string           `json:"run_id"`
	Name    string           `json:"name"`
	Records []recordResponse `json:"records"`
	Summary model.Summary    `json:"summary"`
}

func newReportResponse(r *runner.Report) reportResponse {
	out := reportResponse{RunID: r.RunID, Name: r.Name, Summary: r.Summary, Records: make([]recordResponse, len(r.Records))}
	for i, rec := range r.Records {
		out.Records[i] = recordResponse{EvaluationRecord: rec, Error: rec.ErrorMessage()}
	}
	return out
}

func (s *Server) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	rows := req.Rows
	for _, p := range req.Prompts {
		rows = append(rows, model.DatasetRow{BasePrompt: p})
	}
	params, err := req.Params.apply(s.Defaults)
	if err != nil {
		s.fail(c, "evaluate", err)
		return
	}

	report, err := s.App.Evaluate(c.Request.Context(), rows, req.Upsample, params)
	if err != nil {
		s.fail(c, "evaluate", err)
		return
	}
	c.JSON(http.StatusOK, newReportResponse(report))
}

type ValidateRequest struct {
	BasePrompt string         `json:"base_prompt" binding:"required"`
	Params     *ParamsRequest `json:"params"`
}

type outcomeResponse struct {
	Upsampled    bool             `json:"upsampled"`
	FinalCaption string           `json:"final_caption"`
	Image        string           `json:"image,omitempty"`
	Judgement    *model.Judgement `json:"judgement,omitempty"`
	Error        string           `json:"error,omitempty"`
}

func newOutcomeResponse(o app.Outcome) outcomeResponse {
	out := outcomeResponse{
		Upsampled:    o.Upsampled,
		FinalCaption: o.FinalCaption,
		Judgement:    o.Judgement,
		Error:        o.ErrorMessage(),
	}
	if o.Image != nil {
		out.Image = o.Image.DataURI()
	}
	return out
}

func (s *Server) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	params, err := req.Params.apply(s.Defaults)
	if err != nil {
		s.fail(c, "validate", err)
		return
	}

	v, err := s.App.Validate(c.Request.Context(), req.BasePrompt, params)
	if err != nil {
		s.fail(c, "validate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"base_prompt": v.BasePrompt,
		"plain":       newOutcomeResponse(v.Plain),
		"upsampled":   newOutcomeResponse(v.Upsampled),
	})
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
	slog.Error("request failed", "op", op, "error", err)
}

func statusFor(err error) int {
	var paramErr *model.ParamError
	var synthErr *model.SynthesisError
	var unavailable *model.JudgeUnavailableError
	switch {
	case errors.As(err, &paramErr),
		errors.Is(err, model.ErrEmptyPrompt),
		errors.Is(err, model.ErrEmptyDataset):
		return http.StatusBadRequest
	case errors.As(err, &synthErr), errors.As(err, &unavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
