package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dorm2mcp/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the database currently holds",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	dbPath, err := resolveDBPath()
	if err != nil {
		exitWith(ExitConfigInvalid, "ERROR: "+err.Error())
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No database found at", dbPath, "- run 'dorm2mcp seed' first.")
		return nil
	}

	db := store.NewSQLiteStore(dbPath)
	defer func() { _ = db.Close() }()

	summary, err := db.Summarize(context.Background())
	if err != nil {
		exitWith(ExitStoreFailure, "ERROR: "+err.Error())
	}

	st := newStyles(os.Stdout)
	fmt.Println(st.sectionHeader(dbPath))
	fmt.Println(st.kv("Rooms", fmt.Sprintf("%d", summary.Rooms)))
	fmt.Println(st.kv("Students", fmt.Sprintf("%d", summary.Students)))
	fmt.Println(st.kv("Active", fmt.Sprintf("%d", summary.Active)))
	fmt.Println(st.kv("Checked out", fmt.Sprintf("%d", summary.CheckedOut)))
	fmt.Println(st.kv("Maintenance", fmt.Sprintf("%d", summary.Maintenance)))
	return nil
}
