package stt

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// WhisperSpeechToText implements SpeechToText on the OpenAI Whisper API.
type WhisperSpeechToText struct {
	client *openai.Client
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperSpeechToText)(nil)

// NewWhisperSpeechToText creates the Whisper STT adapter.
func NewWhisperSpeechToText(apiKey string, logger *zap.Logger) (*WhisperSpeechToText, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &WhisperSpeechToText{
		client: openai.NewClient(apiKey),
		logger: logger,
	}, nil
}

func (w *WhisperSpeechToText) Name() string {
	return "whisper"
}

func (w *WhisperSpeechToText) TranscribeAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	// FilePath only supplies the extension Whisper uses to sniff the
	// container; the payload itself comes from Reader.
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: "clip." + string(config.Format),
		Language: config.Language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}

	w.logger.Debug("Whisper transcription completed",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_chars", len(resp.Text)))

	return resp.Text, nil
}
