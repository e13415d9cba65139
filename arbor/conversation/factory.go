package conversation

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/arborhq/arbor/arbor/config"
	"github.com/arborhq/arbor/arbor/conversation/adapters"
	ports "github.com/arborhq/arbor/arbor/conversation/ports"
)

// Factory creates and wires the conversation engine from configuration.
type Factory struct {
	cfg    *config.ConversationConfig
	db     *sql.DB // optional, for the transcript store
	logger zerolog.Logger
}

// NewFactory creates a new engine factory. db may be nil; transcript
// persistence is then disabled regardless of configuration.
func NewFactory(cfg *config.ConversationConfig, db *sql.DB, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, db: db, logger: logger}
}

// CreateOrchestrator wires a fully configured orchestrator around the given
// collaborators.
func (f *Factory) CreateOrchestrator(
	gateway ports.AssistantGateway,
	store ports.TreeStore,
	cursor ports.NodeCursor,
	generator ports.Generator,
	researcher ports.Researcher,
	confirmer ports.Confirmer,
	genOpts ports.GenerateOptions,
) *Orchestrator {
	tracer := f.createTracer()

	ledger := NewLedger(f.cfg.HistoryCapacity, f.cfg.MaxMessageLen)
	assembler := NewContextAssembler(store, tracer, f.cfg.RecentWindow)
	dispatcher := NewDispatcher(store, cursor, generator, researcher, confirmer, tracer, genOpts)

	return NewOrchestrator(
		ledger,
		assembler,
		gateway,
		dispatcher,
		cursor,
		f.createRateLimiter(),
		tracer,
		f.createTranscript(),
		f.cfg.MaxMessageLen,
	)
}

func (f *Factory) createTracer() ports.Tracer {
	if !f.cfg.EnableTracing {
		return noOpTracer{}
	}
	return adapters.NewZerologTracer(f.logger)
}

func (f *Factory) createRateLimiter() ports.RateLimiter {
	if !f.cfg.RateLimitEnabled {
		return noOpRateLimiter{}
	}
	return adapters.NewTokenBucket(f.cfg.RateLimitCapacity, f.cfg.RateLimitRefillRate)
}

func (f *Factory) createTranscript() ports.TranscriptStore {
	if !f.cfg.TranscriptEnabled || f.db == nil {
		return noOpTranscript{}
	}
	return adapters.NewLibSQLTranscriptStore(f.db)
}
