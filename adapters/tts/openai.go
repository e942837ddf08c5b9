package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// OpenAITTS implements TextToSpeech on the OpenAI speech API.
type OpenAITTS struct {
	client *openai.Client
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*OpenAITTS)(nil)

// NewOpenAITTS creates an OpenAI TTS adapter.
func NewOpenAITTS(apiKey string, logger *zap.Logger) (*OpenAITTS, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &OpenAITTS{
		client: openai.NewClient(apiKey),
		logger: logger,
	}, nil
}

func (o *OpenAITTS) Name() string {
	return "openai"
}

func (o *OpenAITTS) SynthesizeAudio(ctx context.Context, text string, config repositories.VoiceConfig) ([]byte, error) {
	voice := openai.VoiceAlloy
	if config.Voice != "" {
		voice = openai.SpeechVoice(config.Voice)
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai synthesis failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}

	o.logger.Debug("OpenAI synthesis completed",
		zap.Int("text_chars", len(text)),
		zap.Int("audio_bytes", len(audio)))

	return audio, nil
}
