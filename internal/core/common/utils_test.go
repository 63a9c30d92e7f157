package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

func TestParseJSONWithNoise(t *testing.T) {
	resp := "Here you go:\n```json\n{\"score\": 0.75, \"rationale\": \"close match\"}\n```\nThanks!"

	v, err := ParseJSON[verdict](resp)
	require.NoError(t, err)
	assert.Equal(t, 0.75, v.Score)
	assert.Equal(t, "close match", v.Rationale)
}

func TestParseJSONErrors(t *testing.T) {
	_, err := ParseJSON[verdict]("no json here")
	assert.Error(t, err)

	_, err = ParseJSON[verdict]("} backwards {")
	assert.Error(t, err)

	_, err = ParseJSON[verdict](`{"score": "high"}`)
	assert.Error(t, err)
}

func TestCleanCaption(t *testing.T) {
	cases := map[string]string{
		`"A frog on a table."`:             "A frog on a table.",
		"Answer: a frog on a table":        "a frog on a table",
		"[a frog in a forest]":             "a frog in a forest",
		"```\nCaption: 'a frog'\n```":       "a frog",
		"  plain caption with no wrapper  ": "plain caption with no wrapper",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanCaption(in), in)
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 5, WordCount("a frog\tplaying\n dominoes today"))
}
