package entities

// ProvidersUsed records which provider served each role during one run.
// Reported back to the caller for transparency only.
type ProvidersUsed struct {
	Stt string `json:"stt"`
	Ai  string `json:"ai"`
	Tts string `json:"tts"`
}

// PipelineResult is the terminal outcome of one pipeline run.
//
// When Blocked is true the run ended at a safety checkpoint: OutputAudio is
// absent and SafetyReason explains the verdict. Blocked content is never
// re-synthesized.
type PipelineResult struct {
	Success         bool          `json:"success"`
	TranscribedText string        `json:"transcribed_text,omitempty"`
	AiResponseText  string        `json:"ai_response,omitempty"`
	OutputAudio     []byte        `json:"-"`
	Blocked         bool          `json:"blocked"`
	SafetyReason    string        `json:"safety_reason,omitempty"`
	Providers       ProvidersUsed `json:"providers"`
	ChatID          string        `json:"chat_id,omitempty"`
}

// SafetyVerdict is the outcome of one safety-gate check. Produced and
// consumed within a single pipeline run.
type SafetyVerdict struct {
	Allowed bool        `json:"allowed"`
	Reason  string      `json:"reason,omitempty"`
	Level   SafetyLevel `json:"level"`
}
