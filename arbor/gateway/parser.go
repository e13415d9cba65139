package gateway

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// commandBlockPattern matches a fenced json block anywhere in the completion.
var commandBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

const commandSchema = `{
	"type": "object",
	"properties": {
		"commands": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"parameters": {
						"type": "array",
						"items": {"type": "string"}
					}
				},
				"required": ["name"],
				"additionalProperties": false
			}
		}
	},
	"required": ["commands"],
	"additionalProperties": false
}`

type commandEnvelope struct {
	Commands []struct {
		Name       string   `json:"name"`
		Parameters []string `json:"parameters"`
	} `json:"commands"`
}

// ResponseParser splits a raw completion into prose and validated commands.
// Any malformation in the command block fails the whole response; partial
// results never leak out.
type ResponseParser struct {
	schema *gojsonschema.Schema
}

// NewResponseParser compiles the command envelope schema.
func NewResponseParser() (*ResponseParser, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(commandSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile command schema: %w", err)
	}
	return &ResponseParser{schema: schema}, nil
}

// Parse extracts the reply text and command list from a completion.
func (p *ResponseParser) Parse(raw string) (ports.Reply, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ports.Reply{}, fmt.Errorf("empty completion")
	}

	match := commandBlockPattern.FindStringSubmatchIndex(trimmed)
	if match == nil {
		return ports.Reply{Text: trimmed}, nil
	}

	blockJSON := trimmed[match[2]:match[3]]
	prose := strings.TrimSpace(trimmed[:match[0]] + trimmed[match[1]:])

	result, err := p.schema.Validate(gojsonschema.NewStringLoader(blockJSON))
	if err != nil {
		return ports.Reply{}, fmt.Errorf("malformed command block: %w", err)
	}
	if !result.Valid() {
		return ports.Reply{}, fmt.Errorf("command block failed validation: %s", schemaErrors(result))
	}

	var envelope commandEnvelope
	if err := json.Unmarshal([]byte(blockJSON), &envelope); err != nil {
		return ports.Reply{}, fmt.Errorf("failed to decode command block: %w", err)
	}

	commands := make([]ports.Command, 0, len(envelope.Commands))
	for _, c := range envelope.Commands {
		kind, ok := ports.ParseKind(c.Name)
		if !ok {
			return ports.Reply{}, fmt.Errorf("unknown command %q", c.Name)
		}
		commands = append(commands, ports.Command{Kind: kind, Parameters: c.Parameters})
	}

	return ports.Reply{Text: prose, Commands: commands}, nil
}

func schemaErrors(result *gojsonschema.Result) string {
	var parts []string
	for _, e := range result.Errors() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
