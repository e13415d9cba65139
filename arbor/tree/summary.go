package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const summaryCacheTTLSeconds = 300

// SummaryCache memoizes computed node summaries. Keys embed the node's
// UpdatedAt, so edits invalidate naturally.
type SummaryCache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}

// Summarizer produces a compact description of a node for assistant context:
// title, a bounded head of the content, and immediate child titles.
type Summarizer struct {
	store  Store
	cache  SummaryCache
	maxLen int
}

// NewSummarizer creates a summarizer. cache may be nil to disable memoization.
func NewSummarizer(store Store, cache SummaryCache, maxLen int) *Summarizer {
	if maxLen <= 0 {
		maxLen = 500
	}
	return &Summarizer{store: store, cache: cache, maxLen: maxLen}
}

// Summarize returns the summary for a node, recomputing only when the node
// has changed since the cached entry was written.
func (s *Summarizer) Summarize(ctx context.Context, id uuid.UUID) (string, error) {
	node, err := s.store.GetNode(ctx, id)
	if err != nil {
		return "", fmt.Errorf("summary lookup failed: %w", err)
	}

	key := fmt.Sprintf("summary:%s:%d", node.ID, node.UpdatedAt.UnixNano())
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return string(cached), nil
		}
	}

	summary, err := s.build(ctx, node)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, []byte(summary), summaryCacheTTLSeconds)
	}
	return summary, nil
}

func (s *Summarizer) build(ctx context.Context, node *Node) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", node.Title)

	content := strings.TrimSpace(node.Content)
	if content != "" {
		if len(content) > s.maxLen {
			content = content[:s.maxLen] + "..."
		}
		fmt.Fprintf(&b, "Content: %s\n", content)
	}

	children, err := s.store.Children(ctx, &node.ID)
	if err != nil {
		return "", fmt.Errorf("summary children lookup failed: %w", err)
	}
	if len(children) > 0 {
		titles := make([]string, len(children))
		for i, child := range children {
			titles[i] = child.Title
		}
		fmt.Fprintf(&b, "Children: %s\n", strings.Join(titles, ", "))
	}

	return strings.TrimSpace(b.String()), nil
}

// Service bundles a Store with a Summarizer, satisfying the conversation
// engine's tree contract in one value.
type Service struct {
	Store
	summarizer *Summarizer
}

// NewService wraps a store with summary support.
func NewService(store Store, cache SummaryCache, summaryMaxLen int) *Service {
	return &Service{
		Store:      store,
		summarizer: NewSummarizer(store, cache, summaryMaxLen),
	}
}

// NodeSummary implements the summary half of the conversation tree contract.
func (s *Service) NodeSummary(ctx context.Context, id uuid.UUID) (string, error) {
	return s.summarizer.Summarize(ctx, id)
}
