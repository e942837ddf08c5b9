package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// OpenAILanguageModel implements LanguageModel on the OpenAI chat API.
type OpenAILanguageModel struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

var _ repositories.LanguageModel = (*OpenAILanguageModel)(nil)

// NewOpenAILanguageModel creates an OpenAI chat adapter.
func NewOpenAILanguageModel(apiKey string, logger *zap.Logger) (*OpenAILanguageModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &OpenAILanguageModel{
		client: openai.NewClient(apiKey),
		logger: logger,
		model:  openai.GPT4oMini,
	}, nil
}

func (o *OpenAILanguageModel) Name() string {
	return "openai"
}

func (o *OpenAILanguageModel) GenerateReply(ctx context.Context, req repositories.GenerateRequest) (string, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Transcript},
		},
		Temperature: 0.7,
		// The continuity token rides the user field so the provider can
		// correlate turns from the same conversation.
		User: req.ChatID,
	})
	if err != nil {
		return "", fmt.Errorf("openai generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	if reply == "" {
		return "", fmt.Errorf("openai returned empty reply")
	}

	o.logger.Debug("OpenAI reply generated",
		zap.Int("transcript_chars", len(req.Transcript)),
		zap.Int("reply_chars", len(reply)))

	return reply, nil
}
