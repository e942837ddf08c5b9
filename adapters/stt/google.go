package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText on Google Cloud Speech.
// Credentials come from the standard GOOGLE_APPLICATION_CREDENTIALS chain.
type GoogleSpeechToText struct {
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates the Google STT adapter.
func NewGoogleSpeechToText(logger *zap.Logger) *GoogleSpeechToText {
	return &GoogleSpeechToText{logger: logger}
}

func (g *GoogleSpeechToText) Name() string {
	return "google"
}

// TranscribeAudio runs a synchronous recognition over the whole clip and
// concatenates the best alternatives.
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	encoding, err := audioEncoding(config.Format)
	if err != nil {
		return "", err
	}

	language := config.Language
	if language == "" {
		language = "en-US"
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     encoding,
			LanguageCode: language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}

	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}

	g.logger.Debug("Google transcription completed",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_chars", len(transcript)))

	return transcript, nil
}

// audioEncoding maps the gateway's audio formats onto the Speech API enum.
func audioEncoding(format entities.AudioFormat) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch format {
	case entities.AudioFormatWav:
		return speechpb.RecognitionConfig_LINEAR16, nil
	case entities.AudioFormatOgg:
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case entities.AudioFormatMp3:
		return speechpb.RecognitionConfig_MP3, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			fmt.Errorf("unsupported audio format: %s", format)
	}
}
