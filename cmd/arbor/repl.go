package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arborhq/arbor/arbor/conversation"
	ports "github.com/arborhq/arbor/arbor/conversation/ports"
	"github.com/arborhq/arbor/arbor/tree"
)

// console serializes terminal input between the REPL loop and confirmation
// prompts raised mid-turn. It implements the confirmer contract directly.
type console struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	out     io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{scanner: bufio.NewScanner(in), out: out}
}

func (c *console) ReadLine() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.scanner.Scan() {
		return "", false
	}
	return c.scanner.Text(), true
}

func (c *console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Confirm asks the user to approve a destructive action.
func (c *console) Confirm(ctx context.Context, title, message string) (bool, error) {
	c.Printf("\n%s\n%s [y/N]: ", title, message)
	line, ok := c.ReadLine()
	if !ok {
		return false, fmt.Errorf("input closed")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

var _ ports.Confirmer = (*console)(nil)

// cursor is the REPL's current-node reference, handed to the engine as the
// node cursor.
type cursor struct {
	mu sync.Mutex
	id *uuid.UUID
}

func newCursor() *cursor { return &cursor{} }

func (c *cursor) Current() (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == nil {
		return uuid.Nil, false
	}
	return *c.id, true
}

func (c *cursor) Set(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = &id
}

func (c *cursor) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = nil
}

var _ ports.NodeCursor = (*cursor)(nil)

// repl is the interactive loop: slash commands are handled locally, everything
// else is submitted to the conversation engine.
type repl struct {
	orch    *conversation.Orchestrator
	tree    *tree.Service
	cursor  *cursor
	console *console
	logger  zerolog.Logger
}

func newREPL(orch *conversation.Orchestrator, treeService *tree.Service, cur *cursor, con *console, logger zerolog.Logger) *repl {
	return &repl{orch: orch, tree: treeService, cursor: cur, console: con, logger: logger}
}

// Run drives the loop until /quit or EOF.
func (r *repl) Run(ctx context.Context) error {
	r.orch.OnTurnAppended(func(turn ports.Turn) {
		switch turn.Role {
		case ports.RoleAssistant:
			r.console.Printf("\nassistant: %s\n", turn.Text)
		case ports.RoleSystem:
			r.console.Printf("\n[system] %s\n", turn.Text)
		}
	})
	r.orch.OnCommandOutcome(func(cmd ports.Command, outcome conversation.Outcome) {
		if outcome.OK && outcome.Detail != "" {
			r.console.Printf("[%s] %s\n", cmd.Kind, outcome.Detail)
		}
	})

	r.console.Printf("Arbor. Type a message, or /help for commands.\n")

	for {
		r.console.Printf("\n> ")
		line, ok := r.console.ReadLine()
		if !ok {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		if !r.orch.Submit(ctx, line) {
			r.console.Printf("(busy, message dropped)\n")
		}
	}
}

func (r *repl) handleCommand(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		r.console.Printf(`/select <id>   select a node as current
/node          show the current node
/tree          list root nodes and their children
/history [n]   show recent conversation turns
/quit          exit
`)
	case "/select":
		if len(args) != 1 {
			r.console.Printf("usage: /select <id>\n")
			return false
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			r.console.Printf("invalid node id: %v\n", err)
			return false
		}
		if _, err := r.tree.GetNode(ctx, id); err != nil {
			r.console.Printf("no such node: %v\n", err)
			return false
		}
		r.cursor.Set(id)
		r.console.Printf("selected %s\n", id)
	case "/node":
		id, ok := r.cursor.Current()
		if !ok {
			r.console.Printf("no node selected\n")
			return false
		}
		summary, err := r.tree.NodeSummary(ctx, id)
		if err != nil {
			r.console.Printf("failed to load node: %v\n", err)
			return false
		}
		r.console.Printf("%s\n%s\n", id, summary)
	case "/tree":
		r.printSubtree(ctx, nil, 0)
	case "/history":
		n := 10
		if len(args) == 1 {
			fmt.Sscanf(args[0], "%d", &n)
		}
		for _, turn := range r.orch.History(n) {
			r.console.Printf("%3d %-9s %s\n", turn.Seq, turn.Role, turn.Text)
		}
	default:
		r.console.Printf("unknown command %s, try /help\n", cmd)
	}
	return false
}

func (r *repl) printSubtree(ctx context.Context, parentID *uuid.UUID, depth int) {
	children, err := r.tree.Children(ctx, parentID)
	if err != nil {
		r.console.Printf("failed to list nodes: %v\n", err)
		return
	}
	for _, node := range children {
		marker := " "
		if current, ok := r.cursor.Current(); ok && current == node.ID {
			marker = "*"
		}
		r.console.Printf("%s%s %s  %s\n", strings.Repeat("  ", depth), marker, node.ID, node.Title)
		r.printSubtree(ctx, &node.ID, depth+1)
	}
}
