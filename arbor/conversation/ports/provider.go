package convoports

import "context"

// ChatMessage is a single message sent to a chat provider.
type ChatMessage struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// ChatOptions controls sampling and limits for a provider call.
type ChatOptions struct {
	Temperature float32
	MaxTokens   int
}

// ChatProvider is the abstraction over LLM backends. The gateway, generator,
// and researcher are all built on it; inference itself stays behind this port.
type ChatProvider interface {
	Complete(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
}
