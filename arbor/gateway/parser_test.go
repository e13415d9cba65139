package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

func newTestParser(t *testing.T) *ResponseParser {
	t.Helper()
	parser, err := NewResponseParser()
	require.NoError(t, err)
	return parser
}

func TestParseProseOnly(t *testing.T) {
	parser := newTestParser(t)

	reply, err := parser.Parse("Sure, here is what I think about that.")
	require.NoError(t, err)

	assert.Equal(t, "Sure, here is what I think about that.", reply.Text)
	assert.Empty(t, reply.Commands)
}

func TestParseProseWithCommands(t *testing.T) {
	parser := newTestParser(t)

	raw := "I'll add that chapter.\n\n```json\n{\"commands\": [{\"name\": \"create_node\", \"parameters\": [\"Chapter 1\"]}]}\n```"
	reply, err := parser.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "I'll add that chapter.", reply.Text)
	require.Len(t, reply.Commands, 1)
	assert.Equal(t, ports.KindCreateNode, reply.Commands[0].Kind)
	assert.Equal(t, []string{"Chapter 1"}, reply.Commands[0].Parameters)
}

func TestParseEmptyCommandList(t *testing.T) {
	parser := newTestParser(t)

	raw := "Nothing to change.\n```json\n{\"commands\": []}\n```"
	reply, err := parser.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "Nothing to change.", reply.Text)
	assert.Empty(t, reply.Commands)
}

func TestParseMultipleCommands(t *testing.T) {
	parser := newTestParser(t)

	raw := "Restructuring.\n```json\n{\"commands\": [" +
		"{\"name\": \"create_node\", \"parameters\": [\"Intro\"]}," +
		"{\"name\": \"update_node\", \"parameters\": [\"New intro text\"]}," +
		"{\"name\": \"research\", \"parameters\": [\"style guides\"]}" +
		"]}\n```"
	reply, err := parser.Parse(raw)
	require.NoError(t, err)

	require.Len(t, reply.Commands, 3)
	assert.Equal(t, ports.KindCreateNode, reply.Commands[0].Kind)
	assert.Equal(t, ports.KindUpdateNode, reply.Commands[1].Kind)
	assert.Equal(t, ports.KindResearch, reply.Commands[2].Kind)
}

func TestParseUnknownCommandFailsWhole(t *testing.T) {
	parser := newTestParser(t)

	raw := "Doing things.\n```json\n{\"commands\": [" +
		"{\"name\": \"create_node\", \"parameters\": [\"Valid\"]}," +
		"{\"name\": \"format_disk\", \"parameters\": []}" +
		"]}\n```"
	reply, err := parser.Parse(raw)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "format_disk")
	assert.Empty(t, reply.Commands, "a malformed response must not yield partial commands")
	assert.Empty(t, reply.Text)
}

func TestParseInvalidJSONFailsWhole(t *testing.T) {
	parser := newTestParser(t)

	_, err := parser.Parse("Oops.\n```json\n{\"commands\": [{\"name\": }]}\n```")
	require.Error(t, err)
}

func TestParseSchemaViolationFailsWhole(t *testing.T) {
	parser := newTestParser(t)

	// parameters must be strings
	_, err := parser.Parse("Bad types.\n```json\n{\"commands\": [{\"name\": \"create_node\", \"parameters\": [42]}]}\n```")
	require.Error(t, err)

	// name is required
	_, err = parser.Parse("Missing name.\n```json\n{\"commands\": [{\"parameters\": [\"x\"]}]}\n```")
	require.Error(t, err)

	// unknown envelope keys are rejected
	_, err = parser.Parse("Extra keys.\n```json\n{\"commands\": [], \"extra\": true}\n```")
	require.Error(t, err)
}

func TestParseEmptyCompletion(t *testing.T) {
	parser := newTestParser(t)

	_, err := parser.Parse("")
	require.Error(t, err)

	_, err = parser.Parse("   \n\t")
	require.Error(t, err)
}

func TestParsePlainFenceWithoutLanguageTag(t *testing.T) {
	parser := newTestParser(t)

	raw := "Here.\n```\n{\"commands\": [{\"name\": \"delete_node\"}]}\n```"
	reply, err := parser.Parse(raw)
	require.NoError(t, err)

	require.Len(t, reply.Commands, 1)
	assert.Equal(t, ports.KindDeleteNode, reply.Commands[0].Kind)
	assert.Empty(t, reply.Commands[0].Parameters)
}
