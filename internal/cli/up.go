package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dorm2mcp/internal/config"
	"dorm2mcp/internal/mcp"
	"dorm2mcp/internal/protocol"
	"dorm2mcp/internal/store"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the MCP server",
	RunE:  runUp,
}

var (
	upListen  string
	upMcpPath string
)

func init() {
	upCmd.Flags().StringVar(&upListen, "listen", "", "host:port to listen on (overrides config)")
	upCmd.Flags().StringVar(&upMcpPath, "mcp-path", "", "HTTP path for the MCP endpoint (overrides config)")
}

func runUp(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}
	// Precedence: flags > env > file > defaults.
	if upListen != "" {
		cfg.ListenAddr = upListen
	}
	if upMcpPath != "" {
		cfg.MCPPath = upMcpPath
	}

	db := store.NewSQLiteStore(cfg.DBPath)
	defer func() { _ = db.Close() }()

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		exitWith(ExitBindFailure, "ERROR: server bind failure: "+err.Error())
	}

	mcpURL := fmt.Sprintf("http://%s%s", listener.Addr().String(), cfg.MCPPath)
	st := newStyles(os.Stdout)
	fmt.Println(st.sectionHeader("dorm2mcp"))
	fmt.Println(st.kv("Database", cfg.DBPath))
	fmt.Println(st.kv("MCP endpoint", mcpURL))
	fmt.Println(st.kv("Header", protocol.MCPSessionHeader+": (assigned after initialize response)"))
	fmt.Println()
	fmt.Println(st.success("Ready. Press Ctrl+C to stop."))

	logger := log.New(os.Stderr, "mcp ", log.LstdFlags)
	server := mcp.NewServer(&cfg, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx, listener)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(globalFlags.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if globalFlags.DBPath != "" {
		cfg.DBPath = globalFlags.DBPath
	}
	return cfg, nil
}

func resolveDBPath() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.DBPath, nil
}
