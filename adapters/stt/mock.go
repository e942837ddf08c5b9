package stt

import (
	"context"
	"sync/atomic"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// MockSpeechToText is an offline stand-in used in development mode and
// tests. It returns a fixed transcript and counts invocations.
type MockSpeechToText struct {
	Transcript string
	Err        error
	calls      atomic.Int64
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// NewMockSpeechToText creates a mock returning the given transcript.
func NewMockSpeechToText(transcript string) *MockSpeechToText {
	return &MockSpeechToText{Transcript: transcript}
}

func (m *MockSpeechToText) Name() string {
	return "mock"
}

func (m *MockSpeechToText) TranscribeAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Transcript, nil
}

// Calls returns how many times TranscribeAudio was invoked.
func (m *MockSpeechToText) Calls() int {
	return int(m.calls.Load())
}
