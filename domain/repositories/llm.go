package repositories

import "context"

// LanguageModel abstracts the text-generating providers.
type LanguageModel interface {
	// Name returns the provider identifier reported back to callers.
	Name() string
	// GenerateReply produces the assistant reply for one transcribed turn.
	GenerateReply(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest carries one turn's input to a language-model provider.
//
// ChatID is an opaque continuity token forwarded verbatim so the provider
// can correlate turns; no history is stored on this side of the boundary.
type GenerateRequest struct {
	Transcript   string `json:"transcript"`
	ChatID       string `json:"chat_id,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}
