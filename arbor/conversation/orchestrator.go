package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// Orchestrator is the top-level state machine that drives one conversation
// turn at a time: record the utterance, assemble context, call the assistant,
// run each returned command in order, and publish events throughout. The
// atomic processing flag is the sole serialization primitive; a submission
// while a turn is in flight is a silent no-op.
type Orchestrator struct {
	Events

	ledger     *Ledger
	assembler  *ContextAssembler
	gateway    ports.AssistantGateway
	dispatcher *Dispatcher
	cursor     ports.NodeCursor
	limiter    ports.RateLimiter
	tracer     ports.Tracer
	transcript ports.TranscriptStore

	conversationID string
	maxMessageLen  int

	processing atomic.Bool
	// lastCommand is read and written only while the processing flag is held.
	lastCommand *ports.Command
}

// NewOrchestrator wires the engine. limiter, tracer, and transcript may be nil
// to disable the respective concern.
func NewOrchestrator(
	ledger *Ledger,
	assembler *ContextAssembler,
	gateway ports.AssistantGateway,
	dispatcher *Dispatcher,
	cursor ports.NodeCursor,
	limiter ports.RateLimiter,
	tracer ports.Tracer,
	transcript ports.TranscriptStore,
	maxMessageLen int,
) *Orchestrator {
	if limiter == nil {
		limiter = noOpRateLimiter{}
	}
	if tracer == nil {
		tracer = noOpTracer{}
	}
	if transcript == nil {
		transcript = noOpTranscript{}
	}
	return &Orchestrator{
		ledger:         ledger,
		assembler:      assembler,
		gateway:        gateway,
		dispatcher:     dispatcher,
		cursor:         cursor,
		limiter:        limiter,
		tracer:         tracer,
		transcript:     transcript,
		conversationID: uuid.NewString(),
		maxMessageLen:  maxMessageLen,
	}
}

// State reports the current processing state.
func (o *Orchestrator) State() ProcessingState {
	if o.processing.Load() {
		return StateProcessing
	}
	return StateIdle
}

// ConversationID identifies this conversation in the transcript store.
func (o *Orchestrator) ConversationID() string { return o.conversationID }

// History returns the last n recorded turns.
func (o *Orchestrator) History(n int) []ports.Turn { return o.ledger.Recent(n) }

// HistoryLen reports the number of retained turns.
func (o *Orchestrator) HistoryLen() int { return o.ledger.Len() }

// Submit runs one conversation turn to completion. It reports whether the
// utterance was accepted: empty or whitespace-only utterances, and submissions
// while a turn is already processing, are silent no-ops. Once accepted, the
// turn runs to success or failure; cancellation mid-turn is not supported, and
// the state always returns to Idle.
func (o *Orchestrator) Submit(ctx context.Context, utterance string) bool {
	if strings.TrimSpace(utterance) == "" {
		return false
	}
	if !o.processing.CompareAndSwap(false, true) {
		return false
	}
	o.emitStateChanged(StateProcessing)

	var followUps []string
	recovered := panics.Try(func() {
		followUps = o.runTurn(ctx, utterance)
	})
	if recovered != nil {
		o.record(ctx, ports.RoleSystem, fmt.Sprintf("internal error: %v", recovered.Value))
	}

	o.processing.Store(false)
	o.emitStateChanged(StateIdle)

	// Research follow-ups re-enter as separate, sequential top-level turns
	// only after this turn has returned to Idle.
	for _, followUp := range followUps {
		o.Submit(ctx, followUp)
	}

	return true
}

// runTurn executes the body of a turn. Any error path records exactly one
// System turn and returns; the caller restores the Idle state.
func (o *Orchestrator) runTurn(ctx context.Context, utterance string) []string {
	var turnErr error
	ctx, finish := o.tracer.StartSpan(ctx, "conversation_turn", map[string]any{
		"conversation_id": o.conversationID,
	})
	defer func() { finish(turnErr) }()

	if o.maxMessageLen > 0 && len(utterance) > o.maxMessageLen {
		turnErr = &ValidationError{Reason: "message too long"}
		o.record(ctx, ports.RoleSystem, "message too long")
		return nil
	}

	o.record(ctx, ports.RoleUser, utterance)

	convCtx := o.assembler.Assemble(ctx, o.ledger, o.cursor, o.lastCommand)

	release, err := o.limiter.Acquire(ctx, "assistant")
	if err != nil {
		turnErr = &GatewayError{Err: err}
		o.record(ctx, ports.RoleSystem, turnErr.Error())
		return nil
	}
	defer release()

	reply, err := o.gateway.Send(ctx, utterance, convCtx)
	if err != nil {
		turnErr = &GatewayError{Err: err}
		o.record(ctx, ports.RoleSystem, turnErr.Error())
		return nil
	}

	o.record(ctx, ports.RoleAssistant, reply.Text)

	// Commands run sequentially, in the order received; later commands may
	// depend on state changes made by earlier ones. A failure is reported and
	// the batch continues.
	var followUps []string
	for _, cmd := range reply.Commands {
		outcome := o.dispatcher.Execute(ctx, cmd)
		o.emitCommandOutcome(cmd, outcome)
		if !outcome.OK {
			o.record(ctx, ports.RoleSystem, outcome.Describe(cmd))
		}
		if outcome.FollowUp != "" {
			followUps = append(followUps, outcome.FollowUp)
		}
	}

	if len(reply.Commands) > 0 {
		last := reply.Commands[len(reply.Commands)-1]
		o.lastCommand = &last
	}

	return followUps
}

// record appends to the ledger, notifies subscribers, and mirrors the turn to
// the transcript store. Transcript failures never fail the turn.
func (o *Orchestrator) record(ctx context.Context, role ports.Role, text string) {
	turn := o.ledger.Record(role, text)
	o.emitTurnAppended(turn)

	if err := o.transcript.SaveTurn(ctx, o.conversationID, turn); err != nil {
		o.tracer.Event(ctx, "transcript_save_failed", map[string]any{"error": err.Error()})
	}
}

// No-op collaborators for disabled concerns.

type noOpRateLimiter struct{}

func (noOpRateLimiter) Acquire(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

type noOpTracer struct{}

func (noOpTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(err error) {}
}

func (noOpTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

type noOpTranscript struct{}

func (noOpTranscript) SaveTurn(ctx context.Context, conversationID string, turn ports.Turn) error {
	return nil
}

func (noOpTranscript) LoadRecent(ctx context.Context, conversationID string, k int) ([]ports.Turn, error) {
	return nil, nil
}

var (
	_ ports.RateLimiter     = noOpRateLimiter{}
	_ ports.Tracer          = noOpTracer{}
	_ ports.TranscriptStore = noOpTranscript{}
)
