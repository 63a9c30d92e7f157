package tracker

import (
	"encoding/json"
	"errors"

	"github.com/agenthands/upsampler/internal/core/model"
)

// recordFields flattens a record into the columns every backend stores.
type recordFields struct {
	Score        *float64
	Verdict      string
	Rationale    string
	AttemptCount int
	Error        string
	Stage        string
}

func flatten(rec model.EvaluationRecord) recordFields {
	f := recordFields{Error: rec.ErrorMessage()}
	if rec.Judgement != nil {
		score := rec.Judgement.Score
		f.Score = &score
		f.Verdict = rec.Judgement.Verdict
		f.Rationale = rec.Judgement.Rationale
		f.AttemptCount = rec.Judgement.AttemptCount
	}
	var rowErr *model.DatasetRowError
	if errors.As(rec.Error, &rowErr) {
		f.Stage = string(rowErr.Stage)
	}
	return f
}

func toJSON(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
