package rpc

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/internal/pipeline"
	"github.com/adiwidya/voxgate/server/internal/quota"
	"github.com/adiwidya/voxgate/server/internal/registry"
)

// ProcessVoiceParams is the external shape of one process_voice call.
type ProcessVoiceParams struct {
	AccessKey   string `json:"access_key"`
	AudioFile   string `json:"audio_file"` // base64
	AudioFormat string `json:"audio_format"`
	ChatID      string `json:"chat_id,omitempty"`
	SafetyLevel string `json:"safety_level,omitempty"`
	BasePrompt  string `json:"base_prompt,omitempty"`
	SttProvider string `json:"stt_provider,omitempty"`
	AiProvider  string `json:"ai_provider,omitempty"`
	TtsProvider string `json:"tts_provider,omitempty"`
}

// ProcessVoiceResult is the external shape of one process_voice result.
type ProcessVoiceResult struct {
	Success         bool                   `json:"success"`
	TranscribedText string                 `json:"transcribed_text,omitempty"`
	AiResponse      string                 `json:"ai_response,omitempty"`
	OutputAudio     string                 `json:"output_audio_base64,omitempty"`
	Blocked         bool                   `json:"blocked"`
	SafetyReason    string                 `json:"safety_reason,omitempty"`
	Providers       entities.ProvidersUsed `json:"providers"`
	ChatID          string                 `json:"chat_id,omitempty"`
}

// ErrAudioDecode marks a transfer-encoding failure on the audio payload.
var ErrAudioDecode = errors.New("audio payload is not valid base64")

// DecodeVoiceRequest maps the external tool-call shape onto the internal
// request. A base64 failure still yields a request (with empty audio) so
// the caller can run it through the orchestrator and consume the quota
// unit the attempt owes; the returned error preserves the decode cause.
func DecodeVoiceRequest(params *ProcessVoiceParams) (*entities.VoiceRequest, error) {
	req := &entities.VoiceRequest{
		AccessKey:   params.AccessKey,
		AudioFormat: entities.AudioFormat(params.AudioFormat),
		ChatID:      params.ChatID,
		SafetyLevel: entities.SafetyLevel(params.SafetyLevel),
		BasePrompt:  params.BasePrompt,
		Overrides: entities.ProviderOverrides{
			Stt: params.SttProvider,
			Ai:  params.AiProvider,
			Tts: params.TtsProvider,
		},
	}

	audio, err := base64.StdEncoding.DecodeString(params.AudioFile)
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrAudioDecode, err)
	}
	req.AudioBytes = audio
	return req, nil
}

// EncodeResult maps a pipeline result back onto the external shape,
// re-encoding output audio for transfer.
func EncodeResult(result *entities.PipelineResult) *ProcessVoiceResult {
	encoded := &ProcessVoiceResult{
		Success:         result.Success,
		TranscribedText: result.TranscribedText,
		AiResponse:      result.AiResponseText,
		Blocked:         result.Blocked,
		SafetyReason:    result.SafetyReason,
		Providers:       result.Providers,
		ChatID:          result.ChatID,
	}
	if len(result.OutputAudio) > 0 {
		encoded.OutputAudio = base64.StdEncoding.EncodeToString(result.OutputAudio)
	}
	return encoded
}

// MapError translates pipeline failures onto JSON-RPC error codes. Safety
// blocks never reach here; they are normal results with blocked=true.
func MapError(err error) *Error {
	switch {
	case errors.Is(err, quota.ErrInvalidKey):
		return &Error{Code: CodeAuthError, Message: "invalid or unknown access key"}
	case errors.Is(err, quota.ErrQuotaExceeded):
		rpcErr := &Error{Code: CodeQuotaExceeded, Message: "daily quota exceeded"}
		var quotaErr *quota.QuotaExceededError
		if errors.As(err, &quotaErr) {
			rpcErr.Data = map[string]interface{}{
				"daily_limit": quotaErr.Limit,
				"resets_at":   quotaErr.ResetsAt,
			}
		}
		return rpcErr
	case errors.Is(err, ErrAudioDecode),
		errors.Is(err, entities.ErrEmptyAudio),
		errors.Is(err, entities.ErrSizeExceeded),
		errors.Is(err, entities.ErrUnsupportedFormat):
		return &Error{Code: CodeAudioError, Message: err.Error()}
	case errors.Is(err, registry.ErrUnknownProvider),
		errors.Is(err, entities.ErrInvalidSafetyLevel):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, pipeline.ErrSttFailed),
		errors.Is(err, pipeline.ErrAiFailed),
		errors.Is(err, pipeline.ErrTtsFailed):
		return &Error{Code: CodeProviderFailure, Message: err.Error()}
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}
