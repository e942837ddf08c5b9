package entities

import (
	"errors"
	"fmt"
)

// MaxAudioBytes is the largest accepted audio payload after base64 decoding.
const MaxAudioBytes = 10 << 20 // 10 MiB

// AudioFormat identifies the container of the submitted audio clip.
type AudioFormat string

const (
	AudioFormatWav AudioFormat = "wav"
	AudioFormatOgg AudioFormat = "ogg"
	AudioFormatMp3 AudioFormat = "mp3"
)

// SafetyLevel selects how aggressively the safety gate filters content.
type SafetyLevel string

const (
	SafetyLevelStrict     SafetyLevel = "strict"
	SafetyLevelModerate   SafetyLevel = "moderate"
	SafetyLevelPermissive SafetyLevel = "permissive"
)

// ProviderOverrides carries explicit provider selections per pipeline role.
// Empty fields fall back to the registry defaults.
type ProviderOverrides struct {
	Stt string `json:"stt,omitempty"`
	Ai  string `json:"ai,omitempty"`
	Tts string `json:"tts,omitempty"`
}

// VoiceRequest is one decoded voice-processing request as the orchestrator
// sees it. AudioBytes is already decoded from the transfer encoding.
type VoiceRequest struct {
	AccessKey   string            `json:"access_key"`
	AudioBytes  []byte            `json:"-"`
	AudioFormat AudioFormat       `json:"audio_format"`
	ChatID      string            `json:"chat_id,omitempty"`
	SafetyLevel SafetyLevel       `json:"safety_level"`
	BasePrompt  string            `json:"base_prompt,omitempty"`
	Overrides   ProviderOverrides `json:"provider_overrides"`
}

var (
	ErrEmptyAudio         = errors.New("audio payload is empty")
	ErrSizeExceeded       = fmt.Errorf("audio payload exceeds %d bytes", MaxAudioBytes)
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrInvalidSafetyLevel = errors.New("invalid safety level")
)

// Validate checks the request invariants that hold before any provider call.
func (r *VoiceRequest) Validate() error {
	if len(r.AudioBytes) == 0 {
		return ErrEmptyAudio
	}
	if len(r.AudioBytes) > MaxAudioBytes {
		return ErrSizeExceeded
	}
	switch r.AudioFormat {
	case AudioFormatWav, AudioFormatOgg, AudioFormatMp3:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, r.AudioFormat)
	}
	switch r.SafetyLevel {
	case SafetyLevelStrict, SafetyLevelModerate, SafetyLevelPermissive:
	case "":
		r.SafetyLevel = SafetyLevelStrict
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSafetyLevel, r.SafetyLevel)
	}
	return nil
}
