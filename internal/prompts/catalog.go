package prompts

// Prompt is one named system-prompt preset callers can select as a base
// prompt for the AI stage.
type Prompt struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

var catalog = []Prompt{
	{
		ID:          "assistant",
		Title:       "Voice Assistant",
		Description: "General-purpose spoken assistant",
		Text:        "You are a friendly voice assistant. Keep replies short and natural to speak aloud.",
	},
	{
		ID:          "storyteller",
		Title:       "Storyteller",
		Description: "Narrates short spoken stories",
		Text:        "You are a storyteller. Answer with a short, vivid story suitable for listening, under a minute when read aloud.",
	},
	{
		ID:          "tutor",
		Title:       "Tutor",
		Description: "Explains concepts step by step",
		Text:        "You are a patient tutor. Explain the answer step by step in plain spoken language, avoiding jargon.",
	},
	{
		ID:          "concise",
		Title:       "Concise",
		Description: "One or two sentence answers",
		Text:        "Answer in at most two short sentences.",
	},
}

// Catalog returns the static prompt catalog.
func Catalog() []Prompt {
	out := make([]Prompt, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a preset by ID.
func Lookup(id string) (Prompt, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Prompt{}, false
}
