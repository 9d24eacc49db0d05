package adapter

import (
	"context"
	"fmt"
	"time"
)

const mockResponse = "```json\n" + `{
  "archetype": "标记机器",
  "roast": "你的片单像一份没人读的年度报告，整齐，完整，毫无惊喜。",
  "tags": ["数据刷子", "没有感情", "标记机器"],
  "scores": {"pretentiousness": 42, "mainstream": 77, "nostalgia": 18, "darkness": 30, "geekiness": 55},
  "item_analysis": [{"title": "Mock", "thought": "为了测试而存在，这很像你。"}],
}` + "\n```"

// MockAdapter returns a canned roast after a configurable delay.
// Used for development and testing without a real LLM backend.
type MockAdapter struct {
	ID    string
	Delay time.Duration
	Text  string
}

func (m *MockAdapter) Name() string {
	if m.ID != "" {
		return m.ID
	}
	return "mock"
}

func (m *MockAdapter) DisplayName() string { return "Mock" }

func (m *MockAdapter) Invoke(ctx context.Context, prompt, credential string) (Outcome, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return Outcome{}, &ProviderError{Provider: m.Name(), Err: fmt.Errorf("mock: %w", ctx.Err())}
		}
	}

	text := m.Text
	if text == "" {
		text = mockResponse
	}
	return Outcome{Text: text, Model: m.DisplayName()}, nil
}
