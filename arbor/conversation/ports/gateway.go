package convoports

import "context"

// Reply is the assistant's parsed response: prose plus zero or more commands.
type Reply struct {
	Text     string
	Commands []Command
}

// AssistantGateway is the opaque boundary to the external assistant. A
// malformed response is a single gateway failure, never a partial success.
type AssistantGateway interface {
	Send(ctx context.Context, utterance string, convCtx Context) (Reply, error)
}
