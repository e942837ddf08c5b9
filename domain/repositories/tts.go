package repositories

import "context"

// TextToSpeech abstracts speech synthesis providers.
type TextToSpeech interface {
	// Name returns the provider identifier reported back to callers.
	Name() string
	// SynthesizeAudio converts text to a complete audio clip.
	SynthesizeAudio(ctx context.Context, text string, config VoiceConfig) ([]byte, error)
}

// VoiceConfig carries voice parameters handed to a TTS provider.
type VoiceConfig struct {
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
	Speed    string `json:"speed,omitempty"`
}
