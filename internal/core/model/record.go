package model

// EvaluationRecord is the outcome of one dataset row.
type EvaluationRecord struct {
	ID              string     `json:"id"`
	Index           int        `json:"index"`
	BasePrompt      string     `json:"base_prompt"`
	Category        string     `json:"category,omitempty"`
	UpsampleEnabled bool       `json:"upsample_enabled"`
	FinalCaption    string     `json:"final_caption,omitempty"`
	Judgement       *Judgement `json:"judgement,omitempty"`
	Error           error      `json:"-"`
}

// Succeeded reports whether the row produced a judgement.
func (r EvaluationRecord) Succeeded() bool {
	return r.Error == nil && r.Judgement != nil
}

// ErrorMessage is the record error as text, empty on success.
func (r EvaluationRecord) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Error()
}

// Summary aggregates a finished run over its successful rows.
type Summary struct {
	Total       int     `json:"total"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	Cancelled   int     `json:"cancelled"`
	MeanScore   float64 `json:"mean_score"`
	MedianScore float64 `json:"median_score"`
}

// DatasetRow is one input prompt of an evaluation dataset.
type DatasetRow struct {
	BasePrompt string `json:"base_prompt"`
	Category   string `json:"category,omitempty"`
}
