package conversation

import (
	"context"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// DefaultRecentWindow is the number of ledger turns included in assistant context.
const DefaultRecentWindow = 5

// ContextAssembler builds the per-turn Context from the current node, the
// tree's summary collaborator, and a capped slice of the ledger. The assembled
// context is transient; nothing here survives the turn.
type ContextAssembler struct {
	store  ports.TreeStore
	tracer ports.Tracer
	window int
}

// NewContextAssembler creates an assembler over the tree store. window caps
// the recent-history slice; non-positive values use the default of 5.
func NewContextAssembler(store ports.TreeStore, tracer ports.Tracer, window int) *ContextAssembler {
	if window <= 0 {
		window = DefaultRecentWindow
	}
	if tracer == nil {
		tracer = noOpTracer{}
	}
	return &ContextAssembler{store: store, tracer: tracer, window: window}
}

// Assemble produces the context for one turn. The summary lookup fails
// closed: on a collaborator fault the summary is simply absent, and the turn
// proceeds without it.
func (a *ContextAssembler) Assemble(ctx context.Context, ledger *Ledger, cursor ports.NodeCursor, lastCommand *ports.Command) ports.Context {
	convCtx := ports.Context{
		LastCommand:   lastCommand,
		RecentHistory: ledger.Recent(a.window),
	}

	if cursor == nil {
		return convCtx
	}
	id, ok := cursor.Current()
	if !ok {
		return convCtx
	}

	convCtx.CurrentNodeID = &id

	summary, err := a.store.NodeSummary(ctx, id)
	if err != nil {
		a.tracer.Event(ctx, "summary_lookup_failed", map[string]any{
			"node_id": id.String(),
			"error":   err.Error(),
		})
		return convCtx
	}
	convCtx.CurrentNodeSummary = summary

	return convCtx
}
