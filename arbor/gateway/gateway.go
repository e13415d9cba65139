package gateway

import (
	"context"
	"fmt"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// ProviderGateway implements the assistant gateway over a chat provider. It
// owns prompt construction and response parsing; callers only ever see a
// parsed reply or a single error.
type ProviderGateway struct {
	provider ports.ChatProvider
	builder  *PromptBuilder
	parser   *ResponseParser
	opts     ports.ChatOptions
}

// NewProviderGateway creates a gateway over the given provider.
func NewProviderGateway(provider ports.ChatProvider, opts ports.ChatOptions) (*ProviderGateway, error) {
	parser, err := NewResponseParser()
	if err != nil {
		return nil, err
	}
	return &ProviderGateway{
		provider: provider,
		builder:  NewPromptBuilder(),
		parser:   parser,
		opts:     opts,
	}, nil
}

// Send forwards one utterance with its context and parses the response.
func (g *ProviderGateway) Send(ctx context.Context, utterance string, convCtx ports.Context) (ports.Reply, error) {
	messages := g.builder.Build(utterance, convCtx)

	raw, err := g.provider.Complete(ctx, messages, g.opts)
	if err != nil {
		return ports.Reply{}, fmt.Errorf("provider call failed: %w", err)
	}

	reply, err := g.parser.Parse(raw)
	if err != nil {
		return ports.Reply{}, fmt.Errorf("invalid assistant response: %w", err)
	}

	return reply, nil
}

var _ ports.AssistantGateway = (*ProviderGateway)(nil)
