package repositories

import (
	"context"

	"github.com/adiwidya/voxgate/server/domain/entities"
)

// SpeechToText abstracts speech recognition providers.
type SpeechToText interface {
	// Name returns the provider identifier reported back to callers.
	Name() string
	// TranscribeAudio converts a complete audio clip to text.
	TranscribeAudio(ctx context.Context, audio []byte, config AudioConfig) (string, error)
}

// AudioConfig carries the audio parameters handed to an STT provider.
type AudioConfig struct {
	Format     entities.AudioFormat `json:"format"`
	SampleRate int                  `json:"sample_rate,omitempty"`
	Language   string               `json:"language,omitempty"`
}
