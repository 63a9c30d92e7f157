package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidates means every rewrite call failed; callers fall back to the base prompt.
	ErrNoCandidates = errors.New("no rewrite candidates to compare")
	ErrEmptyDataset = errors.New("dataset has no rows")
	// ErrInvalidFanOut is returned when fan-out M is not positive or exceeds the exemplar bank.
	ErrInvalidFanOut = errors.New("invalid fan-out")
	ErrEmptyPrompt   = errors.New("base prompt is empty")
)

// Stage names the per-row pipeline step an error came from.
type Stage string

const (
	StageUpsample   Stage = "upsample"
	StageSynthesize Stage = "synthesize"
	StageJudge      Stage = "judge"
)

// ParamError reports an out-of-range generation parameter.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// RewriteCallError is one exemplar's failed candidate call. It is never fatal.
type RewriteCallError struct {
	Index int
	Err   error
}

func (e *RewriteCallError) Error() string {
	return fmt.Sprintf("rewrite with exemplar %d: %v", e.Index, e.Err)
}

func (e *RewriteCallError) Unwrap() error { return e.Err }

// SynthesisError wraps an image backend failure.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("image synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// JudgeParseError is a judge response that could not be turned into a score.
type JudgeParseError struct {
	Response string
	Err      error
}

func (e *JudgeParseError) Error() string {
	return fmt.Sprintf("parse judge response: %v", e.Err)
}

func (e *JudgeParseError) Unwrap() error { return e.Err }

// JudgeTransportError is a failed call to the judge model.
type JudgeTransportError struct {
	Err error
}

func (e *JudgeTransportError) Error() string {
	return fmt.Sprintf("judge call failed: %v", e.Err)
}

func (e *JudgeTransportError) Unwrap() error { return e.Err }

// JudgeUnavailableError means the retry budget was spent without a usable judgement.
type JudgeUnavailableError struct {
	Attempts int
	Err      error
}

func (e *JudgeUnavailableError) Error() string {
	return fmt.Sprintf("judge unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *JudgeUnavailableError) Unwrap() error { return e.Err }

// DatasetRowError ties a stage failure to the row that produced it.
type DatasetRowError struct {
	Index      int
	BasePrompt string
	Stage      Stage
	Err        error
}

func (e *DatasetRowError) Error() string {
	return fmt.Sprintf("row %d (%q) failed at %s: %v", e.Index, e.BasePrompt, e.Stage, e.Err)
}

func (e *DatasetRowError) Unwrap() error { return e.Err }
