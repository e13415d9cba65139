package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arborhq/arbor/arbor/config"
	"github.com/arborhq/arbor/arbor/conversation"
	"github.com/arborhq/arbor/arbor/conversation/adapters"
	ports "github.com/arborhq/arbor/arbor/conversation/ports"
	"github.com/arborhq/arbor/arbor/db"
	"github.com/arborhq/arbor/arbor/gateway"
	"github.com/arborhq/arbor/arbor/generation"
	"github.com/arborhq/arbor/arbor/tree"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a tree-structured document editor with an embedded assistant",
	Long: `Arbor edits documents organized as a tree of nodes. An embedded
conversational assistant can create, update, and delete nodes, generate
content, and run research queries on your behalf.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	database, err := db.ConnectToDB(cfg.Arbor.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	store := tree.NewLibSQLStore(database)
	summaryCache := adapters.NewLRUCache(cfg.Tree.SummaryCacheCapacity)
	treeService := tree.NewService(store, summaryCache, cfg.Tree.SummaryMaxLen)

	provider := gateway.NewOpenAIProvider(&cfg.LLM)
	assistantGateway, err := gateway.NewProviderGateway(provider, ports.ChatOptions{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxNewTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	generator := generation.NewProviderGenerator(provider)
	researcher := generation.NewProviderResearcher(provider, ports.ChatOptions{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxNewTokens,
	})

	cur := newCursor()
	con := newConsole(os.Stdin, os.Stdout)

	factory := conversation.NewFactory(&cfg.Conversation, database, logger)
	orch := factory.CreateOrchestrator(
		assistantGateway,
		treeService,
		cur,
		generator,
		researcher,
		con,
		ports.GenerateOptions{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxNewTokens,
		},
	)

	// Periodic WAL checkpoint keeps the on-disk file current while editing.
	saver := tree.NewAutoSaver(cfg.Tree.AutosaveInterval, func(ctx context.Context) error {
		_, err := database.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
		return err
	}, logger)
	saver.Start(ctx)
	defer saver.Stop()

	loop := newREPL(orch, treeService, cur, con, logger)
	return loop.Run(ctx)
}
