package judge

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/agenthands/upsampler/internal/config"
	"github.com/agenthands/upsampler/internal/core/common"
	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/agenthands/upsampler/internal/core/prompts"
	"github.com/agenthands/upsampler/internal/llm"
	"github.com/agenthands/upsampler/internal/retry"
)

const (
	VerdictPass = "pass"
	VerdictFail = "fail"
)

var (
	scorePattern   = regexp.MustCompile(`(?i)"?score"?\s*[:=]\s*"?(-?\d*\.?\d+)`)
	verdictPattern = regexp.MustCompile(`(?i)^\W*(yes|pass|no|fail)\b`)
)

// Judge scores a generated image against the prompt it was requested with.
type Judge struct {
	LLM          llm.LLMClient
	SystemPrompt string
	Prompt       string
	Backoff      retry.Backoff
	MaxTokens    int
	Logger       *slog.Logger
}

func NewJudge(llmClient llm.LLMClient, p config.Prompts, backoff retry.Backoff) *Judge {
	j := &Judge{
		LLM:          llmClient,
		SystemPrompt: p.JudgeSystem,
		Prompt:       p.Judge,
		Backoff:      backoff,
		Logger:       slog.Default(),
	}
	if j.SystemPrompt == "" {
		j.SystemPrompt = prompts.JudgeSystem
	}
	if j.Prompt == "" {
		j.Prompt = prompts.Judge
	}
	return j
}

// Score makes up to maxRetries+1 judge calls. Transport and parse failures are
// retried with backoff; permanent API errors and cancellation are not.
func (j *Judge) Score(ctx context.Context, basePrompt string, image model.GeneratedImage, seed, maxRetries int) (model.Judgement, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	req := llm.Request{
		SystemPrompt: j.SystemPrompt,
		Prompt:       fmt.Sprintf(j.Prompt, basePrompt) + image.DataURI(),
		Seed:         &seed,
		MaxTokens:    j.MaxTokens,
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := j.Backoff.Wait(ctx, attempt-1); err != nil {
				return model.Judgement{}, err
			}
		}
		attempts++

		response, err := j.LLM.Complete(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.Judgement{}, ctxErr
			}
			lastErr = &model.JudgeTransportError{Err: err}
			if llm.IsPermanent(err) {
				break
			}
			j.Logger.Warn("judge call failed, retrying", "attempt", attempts, "error", err)
			continue
		}

		judgement, err := ParseJudgement(response)
		if err != nil {
			lastErr = err
			j.Logger.Warn("judge response unusable, retrying", "attempt", attempts, "error", err)
			continue
		}
		judgement.AttemptCount = attempts
		return judgement, nil
	}

	return model.Judgement{}, &model.JudgeUnavailableError{Attempts: attempts, Err: lastErr}
}

// ParseJudgement reads a score in [0, 1] from a judge response. It accepts the
// requested JSON object, a bare "score: x" line, or a leading yes/no verdict.
func ParseJudgement(response string) (model.Judgement, error) {
	if parsed, err := common.ParseJSON[model.JudgeResponse](response); err == nil {
		switch {
		case parsed.Score != nil:
			return newJudgement(response, *parsed.Score, parsed.Verdict, parsed.Rationale)
		case parsed.Verdict != "":
			if score, ok := verdictScore(parsed.Verdict); ok {
				return newJudgement(response, score, parsed.Verdict, parsed.Rationale)
			}
		}
	}

	if m := scorePattern.FindStringSubmatch(response); m != nil {
		score, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return newJudgement(response, score, "", strings.TrimSpace(response))
		}
	}

	if m := verdictPattern.FindStringSubmatch(strings.TrimSpace(response)); m != nil {
		score, _ := verdictScore(m[1])
		return newJudgement(response, score, m[1], strings.TrimSpace(response))
	}

	return model.Judgement{}, &model.JudgeParseError{Response: response, Err: fmt.Errorf("no score or verdict found")}
}

func newJudgement(response string, score float64, verdict, rationale string) (model.Judgement, error) {
	if score < 0 || score > 1 {
		return model.Judgement{}, &model.JudgeParseError{Response: response, Err: fmt.Errorf("score %g outside [0, 1]", score)}
	}
	verdict = strings.ToLower(strings.TrimSpace(verdict))
	switch verdict {
	case "yes":
		verdict = VerdictPass
	case "no":
		verdict = VerdictFail
	case "":
		verdict = VerdictFail
		if score >= 0.5 {
			verdict = VerdictPass
		}
	}
	return model.Judgement{Score: score, Verdict: verdict, Rationale: rationale}, nil
}

func verdictScore(verdict string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(verdict)) {
	case "yes", "pass":
		return 1, true
	case "no", "fail":
		return 0, true
	}
	return 0, false
}
