package convoports

import "context"

// GenerateOptions controls sampling for content generation.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// Generator produces document content from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Researcher answers a research query; results are fed back into the
// orchestrator as a synthetic follow-up user turn.
type Researcher interface {
	Research(ctx context.Context, query string) (string, error)
}

// Confirmer asks the user to confirm a destructive action. Blocks the calling
// turn only, not the whole engine.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}
