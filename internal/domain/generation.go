package domain

import "context"

// Generator is the text-generation contract. Implementations receive one
// fully assembled prompt and return the raw model text, which is expected
// (but not guaranteed) to contain a JSON object.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// GenerationResult carries the raw model output and token usage.
type GenerationResult struct {
	Text         string
	Model        string
	PromptTokens int
	TotalTokens  int
}
