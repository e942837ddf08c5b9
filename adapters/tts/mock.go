package tts

import (
	"context"
	"sync/atomic"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// MockTextToSpeech is an offline stand-in used in development mode and
// tests. It returns fixed audio bytes and counts invocations.
type MockTextToSpeech struct {
	Audio []byte
	Err   error
	calls atomic.Int64
}

var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

// NewMockTextToSpeech creates a mock returning the given audio.
func NewMockTextToSpeech(audio []byte) *MockTextToSpeech {
	return &MockTextToSpeech{Audio: audio}
}

func (m *MockTextToSpeech) Name() string {
	return "mock"
}

func (m *MockTextToSpeech) SynthesizeAudio(ctx context.Context, text string, config repositories.VoiceConfig) ([]byte, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}

// Calls returns how many times SynthesizeAudio was invoked.
func (m *MockTextToSpeech) Calls() int {
	return int(m.calls.Load())
}
