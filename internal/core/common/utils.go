package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var labelPrefix = regexp.MustCompile(`(?i)^\s*(answer|caption|final caption|image description|description)\s*:\s*`)

// ParseJSON cleans and unmarshals a JSON object into a type T.
// It tolerates markdown fences and prose around the object.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	end := strings.LastIndexByte(response, '}')
	if end < start {
		return zero, fmt.Errorf("no JSON object found in response (missing '}')")
	}
	jsonStr := response[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}

// CleanCaption strips the wrapping a model tends to put around a single caption:
// code fences, a leading "Answer:" style label, quotes and square brackets.
func CleanCaption(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = labelPrefix.ReplaceAllString(s, "")

	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"[", "]"}, {"“", "”"}} {
		if len(s) >= 2 && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			s = strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
		}
	}
	return s
}

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
