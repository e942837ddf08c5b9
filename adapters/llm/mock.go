package llm

import (
	"context"
	"sync/atomic"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// MockLanguageModel is an offline stand-in used in development mode and
// tests. It echoes a fixed reply and counts invocations.
type MockLanguageModel struct {
	Reply string
	Err   error
	calls atomic.Int64
}

var _ repositories.LanguageModel = (*MockLanguageModel)(nil)

// NewMockLanguageModel creates a mock returning the given reply.
func NewMockLanguageModel(reply string) *MockLanguageModel {
	return &MockLanguageModel{Reply: reply}
}

func (m *MockLanguageModel) Name() string {
	return "mock"
}

func (m *MockLanguageModel) GenerateReply(ctx context.Context, req repositories.GenerateRequest) (string, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Calls returns how many times GenerateReply was invoked.
func (m *MockLanguageModel) Calls() int {
	return int(m.calls.Load())
}
