package model

// Judgement is the judge's terminal verdict for one generated image.
type Judgement struct {
	Score        float64 `json:"score"`
	Verdict      string  `json:"verdict,omitempty"`
	Rationale    string  `json:"rationale"`
	AttemptCount int     `json:"attempt_count"`
}

// JudgeResponse is the JSON shape the judge model is asked to emit.
type JudgeResponse struct {
	Score     *float64 `json:"score"`
	Verdict   string   `json:"verdict"`
	Rationale string   `json:"rationale"`
}
