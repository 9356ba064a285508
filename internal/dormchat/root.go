package dormchat

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dorm2mcp/internal/config"
	"dorm2mcp/internal/index"
	"dorm2mcp/internal/model"
	"dorm2mcp/internal/ollama"
	"dorm2mcp/internal/rag"
	"dorm2mcp/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "dormchat",
	Short: "Retrieval-augmented chat over the dormitory database",
	Long:  "dormchat embeds the dormitory database into an in-memory vector index once at startup, then answers free-text questions with retrieved context and an Ollama chat model.",
	RunE:  runChat,
}

var (
	chatConfigPath string
	chatDBPath     string
	chatTUI        bool
)

func init() {
	rootCmd.Flags().StringVar(&chatConfigPath, "config", "dorm2mcp.toml", "config file path")
	rootCmd.Flags().StringVar(&chatDBPath, "db", "", "database file path (overrides config)")
	rootCmd.Flags().BoolVar(&chatTUI, "tui", false, "full-screen terminal interface")
}

// Execute runs the chat command.
func Execute() error {
	return rootCmd.Execute()
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(chatConfigPath)
	if err != nil {
		return err
	}
	if chatDBPath != "" {
		cfg.DBPath = chatDBPath
	}

	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return fmt.Errorf("no database found at %s; run 'dorm2mcp seed' first", cfg.DBPath)
	}

	st := store.NewSQLiteStore(cfg.DBPath)
	defer func() { _ = st.Close() }()

	client := ollama.NewClient(cfg.OllamaURL, cfg.ChatModel, cfg.EmbedModel)
	logger := log.New(os.Stderr, "dormchat ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The snapshot is built once; database writes made while the chat
	// is running are not retrievable until the next start.
	fmt.Println("Initializing database and loading into vector store...")
	snapshot, err := rag.BuildSnapshot(ctx, st, client, func() model.Index {
		return index.NewVectorIndex("")
	}, logger)
	if err != nil {
		return fmt.Errorf("building vector snapshot: %w", err)
	}
	fmt.Println("Database loaded into vector store successfully!")

	service := rag.NewService(snapshot, client, client, cfg.TopK, cfg.MaxHistory, logger)

	if chatTUI {
		return RunTUI(ctx, service.ChatTurn)
	}
	return RunREPL(ctx, os.Stdin, os.Stdout, service.ChatTurn)
}
