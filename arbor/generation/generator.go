// Package generation provides content generation and research services built
// on the shared chat provider.
package generation

import (
	"context"
	"fmt"
	"strings"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

const generatorSystemPrompt = `You are a writing assistant. Produce only the requested document content,
with no preamble, commentary, or markdown fences around the whole answer.`

// ProviderGenerator generates document content through a chat provider.
type ProviderGenerator struct {
	provider ports.ChatProvider
}

// NewProviderGenerator creates a generator over the given provider.
func NewProviderGenerator(provider ports.ChatProvider) *ProviderGenerator {
	return &ProviderGenerator{provider: provider}
}

// GenerateText produces content for a prompt.
func (g *ProviderGenerator) GenerateText(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	messages := []ports.ChatMessage{
		{Role: "system", Content: generatorSystemPrompt},
		{Role: "user", Content: prompt},
	}

	out, err := g.provider.Complete(ctx, messages, ports.ChatOptions{
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("generation produced no content")
	}

	return out, nil
}

var _ ports.Generator = (*ProviderGenerator)(nil)
