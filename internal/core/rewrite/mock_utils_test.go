package rewrite

import (
	"context"
	"strings"
	"sync"

	"github.com/agenthands/upsampler/internal/llm"
)

// MockLLMClient answers by matching a substring of the prompt.
type MockLLMClient struct {
	mu        sync.Mutex
	Responses map[string]string
	Fail      map[string]error
	Default   string
	Requests  []llm.Request
}

func (m *MockLLMClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	for key, err := range m.Fail {
		if strings.Contains(req.Prompt, key) {
			return "", err
		}
	}
	for key, resp := range m.Responses {
		if strings.Contains(req.Prompt, key) {
			return resp, nil
		}
	}
	return m.Default, nil
}
