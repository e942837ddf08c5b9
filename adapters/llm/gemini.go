package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

const (
	defaultGeminiModel       = "gemini-2.0-flash"
	defaultGeminiTemperature = float32(0.7)
	defaultGeminiMaxTokens   = 1024
)

// defaultSystemPrompt is used when the request carries no base prompt.
const defaultSystemPrompt = "You are a friendly voice assistant. Keep replies short and natural to speak aloud."

// GeminiLanguageModel implements LanguageModel using Google's Gemini API.
type GeminiLanguageModel struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

var _ repositories.LanguageModel = (*GeminiLanguageModel)(nil)

// NewGeminiLanguageModel creates a Gemini adapter.
func NewGeminiLanguageModel(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiLanguageModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiLanguageModel{
		client: client,
		logger: logger,
		model:  defaultGeminiModel,
	}, nil
}

func (g *GeminiLanguageModel) Name() string {
	return "gemini"
}

// GenerateReply produces one assistant turn. Gemini's generate-content API
// is stateless, so the continuity token is not forwarded here; turn
// correlation stays with the caller.
func (g *GeminiLanguageModel) GenerateReply(ctx context.Context, req repositories.GenerateRequest) (string, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	contents := []*genai.Content{
		genai.NewContentFromText(systemPrompt, genai.RoleUser),
		genai.NewContentFromText(req.Transcript, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(defaultGeminiTemperature),
		MaxOutputTokens: int32(defaultGeminiMaxTokens),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var reply string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply += part.Text
		}
	}
	if reply == "" {
		return "", fmt.Errorf("gemini returned empty reply")
	}

	g.logger.Debug("Gemini reply generated",
		zap.Int("transcript_chars", len(req.Transcript)),
		zap.Int("reply_chars", len(reply)))

	return reply, nil
}
