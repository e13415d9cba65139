package generation

import (
	"context"
	"fmt"
	"strings"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

const researcherSystemPrompt = `You are a research assistant. Answer the query with a concise, factual
summary. Cite what you are confident about and flag what you are not.`

// ProviderResearcher answers research queries through a chat provider. The
// orchestrator feeds its results back into the conversation as a follow-up
// user message.
type ProviderResearcher struct {
	provider ports.ChatProvider
	opts     ports.ChatOptions
}

// NewProviderResearcher creates a researcher over the given provider.
func NewProviderResearcher(provider ports.ChatProvider, opts ports.ChatOptions) *ProviderResearcher {
	return &ProviderResearcher{provider: provider, opts: opts}
}

// Research answers one query.
func (r *ProviderResearcher) Research(ctx context.Context, query string) (string, error) {
	messages := []ports.ChatMessage{
		{Role: "system", Content: researcherSystemPrompt},
		{Role: "user", Content: query},
	}

	out, err := r.provider.Complete(ctx, messages, r.opts)
	if err != nil {
		return "", fmt.Errorf("research failed: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("research produced no results")
	}

	return out, nil
}

var _ ports.Researcher = (*ProviderResearcher)(nil)
