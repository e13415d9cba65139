package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// Outcome is the per-command result. One command's failure never aborts the
// rest of its batch; each outcome is reported individually.
type Outcome struct {
	OK     bool
	Detail string
	Err    error
	// FollowUp, when set, is a synthesized user message the orchestrator
	// submits as a separate top-level turn once the current one is Idle.
	FollowUp string
}

// Describe renders the outcome as user-facing text for the ledger.
func (o Outcome) Describe(cmd ports.Command) string {
	if o.OK {
		return fmt.Sprintf("%s: %s", cmd.Kind, o.Detail)
	}
	if o.Err != nil {
		return fmt.Sprintf("%s failed: %v", cmd.Kind, o.Err)
	}
	return fmt.Sprintf("%s failed: %s", cmd.Kind, o.Detail)
}

// Dispatcher interprets assistant commands against the closed operation set
// and applies them through the tree-mutation collaborator. Validation precedes
// action for every kind; a command is never partially applied.
type Dispatcher struct {
	store      ports.TreeStore
	cursor     ports.NodeCursor
	generator  ports.Generator
	researcher ports.Researcher
	confirmer  ports.Confirmer
	tracer     ports.Tracer
	genOpts    ports.GenerateOptions
}

// NewDispatcher wires the dispatcher's collaborators.
func NewDispatcher(
	store ports.TreeStore,
	cursor ports.NodeCursor,
	generator ports.Generator,
	researcher ports.Researcher,
	confirmer ports.Confirmer,
	tracer ports.Tracer,
	genOpts ports.GenerateOptions,
) *Dispatcher {
	return &Dispatcher{
		store:      store,
		cursor:     cursor,
		generator:  generator,
		researcher: researcher,
		confirmer:  confirmer,
		tracer:     tracer,
		genOpts:    genOpts,
	}
}

// Execute applies a single command and reports its outcome. Panics inside a
// command are contained here so the rest of the batch still runs.
func (d *Dispatcher) Execute(ctx context.Context, cmd ports.Command) (out Outcome) {
	ctx, finish := d.tracer.StartSpan(ctx, "command_execute", map[string]any{
		"kind": cmd.Kind.String(),
	})

	recovered := panics.Try(func() {
		out = d.execute(ctx, cmd)
	})
	if recovered != nil {
		out = Outcome{Err: fmt.Errorf("command panicked: %v", recovered.Value)}
	}

	finish(out.Err)
	return out
}

func (d *Dispatcher) execute(ctx context.Context, cmd ports.Command) Outcome {
	switch cmd.Kind {
	case ports.KindCreateNode:
		return d.createNode(ctx, cmd)
	case ports.KindUpdateNode:
		return d.updateNode(ctx, cmd)
	case ports.KindDeleteNode:
		return d.deleteNode(ctx)
	case ports.KindGenerateContent:
		return d.generateContent(ctx, cmd)
	case ports.KindResearch:
		return d.research(ctx, cmd)
	case ports.KindUnknown:
		return Outcome{Err: &ValidationError{Reason: "unknown command kind"}}
	}
	return Outcome{Err: &ValidationError{Reason: fmt.Sprintf("unhandled command kind %d", cmd.Kind)}}
}

func (d *Dispatcher) createNode(ctx context.Context, cmd ports.Command) Outcome {
	title, ok := param(cmd, 0)
	if !ok {
		return Outcome{Err: &ValidationError{Reason: "create_node requires a title parameter"}}
	}

	// Parent is the current node when one is selected, the root otherwise.
	var parent *uuid.UUID
	if id, selected := d.cursor.Current(); selected {
		parent = &id
	}

	node, err := d.store.CreateNode(ctx, parent, title)
	if err != nil {
		return Outcome{Err: &CollaboratorError{Op: "create node", Err: err}}
	}

	d.cursor.Set(node.ID)
	return Outcome{OK: true, Detail: fmt.Sprintf("created node %q", node.Title)}
}

func (d *Dispatcher) updateNode(ctx context.Context, cmd ports.Command) Outcome {
	content, ok := param(cmd, 0)
	if !ok {
		return Outcome{Err: &ValidationError{Reason: "update_node requires a content parameter"}}
	}

	id, selected := d.cursor.Current()
	if !selected {
		return Outcome{Err: &PreconditionError{Reason: "no node is selected"}}
	}

	if err := d.store.UpdateNode(ctx, id, content); err != nil {
		return Outcome{Err: &CollaboratorError{Op: "update node", Err: err}}
	}
	return Outcome{OK: true, Detail: "content updated"}
}

func (d *Dispatcher) deleteNode(ctx context.Context) Outcome {
	id, selected := d.cursor.Current()
	if !selected {
		return Outcome{Err: &PreconditionError{Reason: "no node is selected"}}
	}

	node, err := d.store.GetNode(ctx, id)
	if err != nil {
		return Outcome{Err: &CollaboratorError{Op: "load node", Err: err}}
	}

	confirmed, err := d.confirmer.Confirm(ctx, "Delete node",
		fmt.Sprintf("Delete %q and all of its children?", node.Title))
	if err != nil {
		return Outcome{Err: &CollaboratorError{Op: "confirm deletion", Err: err}}
	}
	if !confirmed {
		return Outcome{Detail: "deletion declined"}
	}

	deleted, err := d.store.DeleteNode(ctx, id)
	if err != nil {
		return Outcome{Err: &CollaboratorError{Op: "delete node", Err: err}}
	}
	if !deleted {
		return Outcome{Detail: "node no longer exists"}
	}

	d.cursor.Clear()
	return Outcome{OK: true, Detail: fmt.Sprintf("deleted node %q", node.Title)}
}

func (d *Dispatcher) generateContent(ctx context.Context, cmd ports.Command) Outcome {
	contentType, ok := param(cmd, 0)
	if !ok {
		return Outcome{Err: &ValidationError{Reason: "generate_content requires a content type parameter"}}
	}
	prompt, ok := param(cmd, 1)
	if !ok {
		return Outcome{Err: &ValidationError{Reason: "generate_content requires a prompt parameter"}}
	}

	switch strings.ToLower(contentType) {
	case "text":
		id, selected := d.cursor.Current()
		if !selected {
			return Outcome{Err: &PreconditionError{Reason: "text generation requires a selected node"}}
		}

		text, err := d.generator.GenerateText(ctx, prompt, d.genOpts)
		if err != nil {
			return Outcome{Err: &CollaboratorError{Op: "generate text", Err: err}}
		}

		if err := d.store.UpdateNode(ctx, id, text); err != nil {
			return Outcome{Err: &CollaboratorError{Op: "apply generated text", Err: err}}
		}
		return Outcome{OK: true, Detail: "generated content applied"}
	case "image":
		return Outcome{Detail: "image generation is not yet supported"}
	}
	return Outcome{Err: &ValidationError{Reason: fmt.Sprintf("unsupported content type %q", contentType)}}
}

func (d *Dispatcher) research(ctx context.Context, cmd ports.Command) Outcome {
	query, ok := param(cmd, 0)
	if !ok {
		return Outcome{Err: &ValidationError{Reason: "research requires a query parameter"}}
	}

	results, err := d.researcher.Research(ctx, query)
	if err != nil {
		return Outcome{Err: &CollaboratorError{Op: "research", Err: err}}
	}

	return Outcome{
		OK:       true,
		Detail:   fmt.Sprintf("research complete for %q", query),
		FollowUp: fmt.Sprintf("Here are research results for %q, please incorporate them:\n%s", query, results),
	}
}

// param returns the i-th parameter if present and non-blank.
func param(cmd ports.Command, i int) (string, bool) {
	if i >= len(cmd.Parameters) {
		return "", false
	}
	value := strings.TrimSpace(cmd.Parameters[i])
	if value == "" {
		return "", false
	}
	return value, true
}
