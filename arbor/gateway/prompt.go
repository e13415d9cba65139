// Package gateway implements the assistant gateway: prompt construction,
// provider transport, and response parsing into prose plus commands.
package gateway

import (
	"fmt"
	"strings"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

const systemPrompt = `You are the writing assistant embedded in Arbor, a tree-structured document editor.
The user edits a document made of named nodes. You answer in plain prose, and when the
user asks you to change the document you append exactly one fenced json block of the form:

` + "```json" + `
{"commands": [{"name": "create_node", "parameters": ["Title"]}]}
` + "```" + `

Available commands (parameters are positional):
- create_node [title]            create a node under the current one (or at the root)
- update_node [content]          replace the current node's content
- delete_node                    delete the current node (the user will be asked to confirm)
- generate_content [type, prompt] generate content for the current node; type is "Text" or "Image"
- research [query]               look something up; results come back as a follow-up message

Return an empty commands array when no document change is needed.`

// PromptBuilder renders a conversation context into provider chat messages.
type PromptBuilder struct{}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder { return &PromptBuilder{} }

// Build assembles the message list for one assistant call. The utterance is
// already part of the recorded history; it is only appended when the history
// window did not capture it.
func (b *PromptBuilder) Build(utterance string, convCtx ports.Context) []ports.ChatMessage {
	messages := []ports.ChatMessage{{Role: "system", Content: systemPrompt}}

	if section := contextSection(convCtx); section != "" {
		messages = append(messages, ports.ChatMessage{Role: "system", Content: section})
	}

	for _, turn := range convCtx.RecentHistory {
		messages = append(messages, ports.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Text,
		})
	}

	last := len(messages) - 1
	if last < 0 || messages[last].Role != "user" || messages[last].Content != utterance {
		messages = append(messages, ports.ChatMessage{Role: "user", Content: utterance})
	}

	return messages
}

func contextSection(convCtx ports.Context) string {
	var b strings.Builder

	if convCtx.CurrentNodeID != nil {
		fmt.Fprintf(&b, "Currently selected node: %s\n", convCtx.CurrentNodeID)
		if convCtx.CurrentNodeSummary != "" {
			fmt.Fprintf(&b, "Node summary:\n%s\n", convCtx.CurrentNodeSummary)
		}
	} else {
		b.WriteString("No node is currently selected.\n")
	}

	if convCtx.LastCommand != nil {
		fmt.Fprintf(&b, "Last executed command: %s %v\n",
			convCtx.LastCommand.Kind, convCtx.LastCommand.Parameters)
	}

	return strings.TrimSpace(b.String())
}
