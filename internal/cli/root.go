// Package cli implements the dorm2mcp server command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	ExitGenericError  = 1
	ExitConfigInvalid = 2
	ExitStoreFailure  = 3
	ExitBindFailure   = 4
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ConfigPath string
	DBPath     string
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "dorm2mcp",
	Short: "MCP server for a dormitory management database",
	Long:  "dorm2mcp seeds a dormitory SQLite database and serves it to MCP clients as tools, resources and prompts.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "dorm2mcp.toml", "config file path")
	rootCmd.PersistentFlags().StringVar(&globalFlags.DBPath, "db", "", "database file path (overrides config)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns an error; exit code is set by RunE.
func Execute() error {
	return rootCmd.Execute()
}

// exitWith prints message to stderr and exits with code.
func exitWith(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
