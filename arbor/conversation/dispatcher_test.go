package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/arborhq/arbor/arbor/conversation/ports"
	"github.com/arborhq/arbor/arbor/tree"
)

// testCursor implements NodeCursor for testing.
type testCursor struct {
	id *uuid.UUID
}

func (c *testCursor) Current() (uuid.UUID, bool) {
	if c.id == nil {
		return uuid.Nil, false
	}
	return *c.id, true
}

func (c *testCursor) Set(id uuid.UUID) { c.id = &id }
func (c *testCursor) Clear()           { c.id = nil }

// stubGenerator implements Generator for testing.
type stubGenerator struct {
	generateFunc func(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error)
}

func (g *stubGenerator) GenerateText(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	if g.generateFunc != nil {
		return g.generateFunc(ctx, prompt, opts)
	}
	return "generated text", nil
}

// stubResearcher implements Researcher for testing.
type stubResearcher struct {
	researchFunc func(ctx context.Context, query string) (string, error)
}

func (r *stubResearcher) Research(ctx context.Context, query string) (string, error) {
	if r.researchFunc != nil {
		return r.researchFunc(ctx, query)
	}
	return "research results", nil
}

// stubConfirmer implements Confirmer for testing.
type stubConfirmer struct {
	confirm bool
	err     error
	calls   int
}

func (c *stubConfirmer) Confirm(ctx context.Context, title, message string) (bool, error) {
	c.calls++
	return c.confirm, c.err
}

func newTestDispatcher(t *testing.T, cursor ports.NodeCursor, confirmer ports.Confirmer) (*Dispatcher, *tree.Service) {
	t.Helper()
	service := tree.NewService(tree.NewMemoryStore(), nil, 500)
	d := NewDispatcher(service, cursor, &stubGenerator{}, &stubResearcher{}, confirmer, noOpTracer{}, ports.GenerateOptions{})
	return d, service
}

func TestDispatcherCreateNodeAtRoot(t *testing.T) {
	cursor := &testCursor{}
	d, service := newTestDispatcher(t, cursor, &stubConfirmer{})

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindCreateNode,
		Parameters: []string{"Chapter 1"},
	})

	require.True(t, outcome.OK, "outcome: %+v", outcome)

	id, selected := cursor.Current()
	require.True(t, selected, "create should select the new node")

	node, err := service.GetNode(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1", node.Title)
	assert.Nil(t, node.ParentID)
}

func TestDispatcherCreateNodeUnderCurrent(t *testing.T) {
	cursor := &testCursor{}
	d, service := newTestDispatcher(t, cursor, &stubConfirmer{})

	parent, err := service.CreateNode(context.Background(), nil, "Book")
	require.NoError(t, err)
	cursor.Set(parent.ID)

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindCreateNode,
		Parameters: []string{"Chapter 1"},
	})
	require.True(t, outcome.OK)

	id, _ := cursor.Current()
	node, err := service.GetNode(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, node.ParentID)
	assert.Equal(t, parent.ID, *node.ParentID)
}

func TestDispatcherCreateNodeRequiresTitle(t *testing.T) {
	d, _ := newTestDispatcher(t, &testCursor{}, &stubConfirmer{})

	outcome := d.Execute(context.Background(), ports.Command{Kind: ports.KindCreateNode})

	assert.False(t, outcome.OK)
	var validationErr *ValidationError
	assert.ErrorAs(t, outcome.Err, &validationErr)
}

func TestDispatcherUpdateNodeRequiresSelection(t *testing.T) {
	d, _ := newTestDispatcher(t, &testCursor{}, &stubConfirmer{})

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindUpdateNode,
		Parameters: []string{"new content"},
	})

	assert.False(t, outcome.OK)
	var preconditionErr *PreconditionError
	assert.ErrorAs(t, outcome.Err, &preconditionErr)
}

func TestDispatcherUpdateNodeAppliesContent(t *testing.T) {
	cursor := &testCursor{}
	d, service := newTestDispatcher(t, cursor, &stubConfirmer{})

	node, err := service.CreateNode(context.Background(), nil, "Draft")
	require.NoError(t, err)
	cursor.Set(node.ID)

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindUpdateNode,
		Parameters: []string{"revised content"},
	})
	require.True(t, outcome.OK)

	updated, err := service.GetNode(context.Background(), node.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised content", updated.Content)
}

func TestDispatcherDeleteNodeDeclined(t *testing.T) {
	cursor := &testCursor{}
	confirmer := &stubConfirmer{confirm: false}
	d, service := newTestDispatcher(t, cursor, confirmer)

	node, err := service.CreateNode(context.Background(), nil, "Keep me")
	require.NoError(t, err)
	cursor.Set(node.ID)

	outcome := d.Execute(context.Background(), ports.Command{Kind: ports.KindDeleteNode})

	assert.False(t, outcome.OK)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, "deletion declined", outcome.Detail)
	assert.Equal(t, 1, confirmer.calls)

	// Node survives and stays selected
	_, err = service.GetNode(context.Background(), node.ID)
	assert.NoError(t, err)
	_, selected := cursor.Current()
	assert.True(t, selected)
}

func TestDispatcherDeleteNodeConfirmed(t *testing.T) {
	cursor := &testCursor{}
	d, service := newTestDispatcher(t, cursor, &stubConfirmer{confirm: true})

	node, err := service.CreateNode(context.Background(), nil, "Doomed")
	require.NoError(t, err)
	child, err := service.CreateNode(context.Background(), &node.ID, "Child")
	require.NoError(t, err)
	cursor.Set(node.ID)

	outcome := d.Execute(context.Background(), ports.Command{Kind: ports.KindDeleteNode})
	require.True(t, outcome.OK)

	_, err = service.GetNode(context.Background(), node.ID)
	assert.ErrorIs(t, err, tree.ErrNotFound)
	_, err = service.GetNode(context.Background(), child.ID)
	assert.ErrorIs(t, err, tree.ErrNotFound, "children should be deleted with the subtree")

	_, selected := cursor.Current()
	assert.False(t, selected, "cursor should clear after deletion")
}

func TestDispatcherDeleteNodeRequiresSelection(t *testing.T) {
	d, _ := newTestDispatcher(t, &testCursor{}, &stubConfirmer{confirm: true})

	outcome := d.Execute(context.Background(), ports.Command{Kind: ports.KindDeleteNode})

	var preconditionErr *PreconditionError
	assert.ErrorAs(t, outcome.Err, &preconditionErr)
}

func TestDispatcherGenerateTextContent(t *testing.T) {
	cursor := &testCursor{}
	service := tree.NewService(tree.NewMemoryStore(), nil, 500)
	generator := &stubGenerator{
		generateFunc: func(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
			return "a stormy night", nil
		},
	}
	d := NewDispatcher(service, cursor, generator, &stubResearcher{}, &stubConfirmer{}, noOpTracer{}, ports.GenerateOptions{})

	node, err := service.CreateNode(context.Background(), nil, "Opening")
	require.NoError(t, err)
	cursor.Set(node.ID)

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindGenerateContent,
		Parameters: []string{"Text", "write an opening line"},
	})
	require.True(t, outcome.OK, "outcome: %+v", outcome)

	updated, err := service.GetNode(context.Background(), node.ID)
	require.NoError(t, err)
	assert.Equal(t, "a stormy night", updated.Content)
}

func TestDispatcherGenerateImageUnsupported(t *testing.T) {
	cursor := &testCursor{}
	d, service := newTestDispatcher(t, cursor, &stubConfirmer{})

	node, err := service.CreateNode(context.Background(), nil, "Cover")
	require.NoError(t, err)
	cursor.Set(node.ID)

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindGenerateContent,
		Parameters: []string{"Image", "a tree"},
	})

	assert.False(t, outcome.OK)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, "image generation is not yet supported", outcome.Detail)
}

func TestDispatcherGenerateUnknownContentType(t *testing.T) {
	cursor := &testCursor{}
	d, service := newTestDispatcher(t, cursor, &stubConfirmer{})

	node, err := service.CreateNode(context.Background(), nil, "Audio")
	require.NoError(t, err)
	cursor.Set(node.ID)

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindGenerateContent,
		Parameters: []string{"Sound", "a jingle"},
	})

	var validationErr *ValidationError
	assert.ErrorAs(t, outcome.Err, &validationErr)
}

func TestDispatcherResearchProducesFollowUp(t *testing.T) {
	researcher := &stubResearcher{
		researchFunc: func(ctx context.Context, query string) (string, error) {
			return "oak trees live for centuries", nil
		},
	}
	service := tree.NewService(tree.NewMemoryStore(), nil, 500)
	d := NewDispatcher(service, &testCursor{}, &stubGenerator{}, researcher, &stubConfirmer{}, noOpTracer{}, ports.GenerateOptions{})

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindResearch,
		Parameters: []string{"oak tree lifespan"},
	})

	require.True(t, outcome.OK)
	assert.Contains(t, outcome.FollowUp, "oak tree lifespan")
	assert.Contains(t, outcome.FollowUp, "oak trees live for centuries")
}

func TestDispatcherResearchFailure(t *testing.T) {
	researcher := &stubResearcher{
		researchFunc: func(ctx context.Context, query string) (string, error) {
			return "", errors.New("backend down")
		},
	}
	service := tree.NewService(tree.NewMemoryStore(), nil, 500)
	d := NewDispatcher(service, &testCursor{}, &stubGenerator{}, researcher, &stubConfirmer{}, noOpTracer{}, ports.GenerateOptions{})

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindResearch,
		Parameters: []string{"anything"},
	})

	assert.False(t, outcome.OK)
	var collaboratorErr *CollaboratorError
	assert.ErrorAs(t, outcome.Err, &collaboratorErr)
	assert.Empty(t, outcome.FollowUp)
}

func TestDispatcherUnknownKind(t *testing.T) {
	d, _ := newTestDispatcher(t, &testCursor{}, &stubConfirmer{})

	outcome := d.Execute(context.Background(), ports.Command{Kind: ports.KindUnknown})

	var validationErr *ValidationError
	assert.ErrorAs(t, outcome.Err, &validationErr)
}

func TestDispatcherContainsPanics(t *testing.T) {
	generator := &stubGenerator{
		generateFunc: func(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
			panic("generator blew up")
		},
	}
	cursor := &testCursor{}
	service := tree.NewService(tree.NewMemoryStore(), nil, 500)
	d := NewDispatcher(service, cursor, generator, &stubResearcher{}, &stubConfirmer{}, noOpTracer{}, ports.GenerateOptions{})

	node, err := service.CreateNode(context.Background(), nil, "Fragile")
	require.NoError(t, err)
	cursor.Set(node.ID)

	outcome := d.Execute(context.Background(), ports.Command{
		Kind:       ports.KindGenerateContent,
		Parameters: []string{"Text", "boom"},
	})

	assert.False(t, outcome.OK)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "command panicked")
}
