package core

import (
	"context"
	"strings"
	"sync"

	"github.com/agenthands/upsampler/internal/llm"
	"github.com/agenthands/upsampler/internal/synthesis"
)

// MockLLM answers rewrite calls through Rewrite and the compare call with Compare.
type MockLLM struct {
	mu       sync.Mutex
	Rewrite  func(prompt string) (string, error)
	Compare  string
	Requests []llm.Request
}

func (m *MockLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if strings.Contains(req.Prompt, "Compare the attempts") {
		return m.Compare, nil
	}
	if m.Rewrite != nil {
		return m.Rewrite(req.Prompt)
	}
	return "A caption", nil
}

func (m *MockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

type MockSynthesizer struct {
	Image []byte
	Err   error
	Last  synthesis.Request
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, req synthesis.Request) ([]byte, error) {
	m.Last = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Image, nil
}
