package model

// Exemplar is one few-shot (rationale, caption) pair guiding a candidate rewrite.
type Exemplar struct {
	Rationale string `json:"rationale" toml:"rationale"`
	Caption   string `json:"caption" toml:"caption"`
}

// RewriteCandidate is a caption produced under the guidance of a single exemplar.
type RewriteCandidate struct {
	SourceExemplarIndex int    `json:"source_exemplar_index"`
	Rationale           string `json:"rationale"`
	Text                string `json:"text"`
}

// UpsampleResult is the caption handed to image synthesis.
type UpsampleResult struct {
	FinalCaption string `json:"final_caption"`
	BasePrompt   string `json:"base_prompt"`
	Candidates   int    `json:"candidates"`
	// Degraded is set when no candidate survived and the base prompt was used instead.
	Degraded bool `json:"degraded,omitempty"`
}

// Comparison is the structured answer expected from the selector's reduce call.
type Comparison struct {
	Rationale string `json:"rationale"`
	Caption   string `json:"caption"`
}
