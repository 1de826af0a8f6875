package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	syncsvc "github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/sync"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full sync from Canvas into the local database",
	Long: `Fetch courses, assignments, modules, announcements, conversations, and
files from Canvas and reconcile them into the local database.

By default only courses in the most recent enrollment term are synced.

Examples:
  # Sync the most recent term
  canvas-sync sync

  # Sync a specific term
  canvas-sync sync --term 1234

  # Sync every actively enrolled course regardless of term
  canvas-sync sync --all-terms

  # Machine-readable summary
  canvas-sync sync --json`,
	Run: runSync,
}

func init() {
	syncCmd.Flags().Int64("term", syncsvc.TermMostRecent, "Enrollment term id to sync (-1 for most recent)")
	syncCmd.Flags().Bool("all-terms", false, "Sync all terms, ignoring --term")
	syncCmd.Flags().Bool("json", false, "Output summary as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fatal(err)
	}
	log := newLogger(cfg, nil)

	st, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	adapter, err := newAdapter(cfg, log)
	if err != nil {
		fatal(err)
	}

	var termID *int64
	if allTerms, _ := cmd.Flags().GetBool("all-terms"); !allTerms {
		term, _ := cmd.Flags().GetInt64("term")
		termID = &term
	}

	svc := syncsvc.NewService(st, adapter, log,
		syncsvc.WithConversationWindow(cfg.SyncWindowDays))
	summary := svc.SyncAll(cmd.Context(), termID)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(summary)
	} else {
		printSummary(summary)
	}

	if summary.Status != "complete" {
		os.Exit(1)
	}
}

func printSummary(summary *syncsvc.Summary) {
	fmt.Println(ui.Title("Sync summary"))
	fmt.Println(ui.KV("Courses", summary.Courses))
	fmt.Println(ui.KV("Assignments", summary.Assignments))
	fmt.Println(ui.KV("Modules", summary.Modules))
	fmt.Println(ui.KV("Announcements", summary.Announcements))
	fmt.Println(ui.KV("Conversations", summary.Conversations))
	fmt.Println(ui.KV("Files", summary.Files))
	if summary.Status == "complete" {
		fmt.Println(ui.Success("Status: complete"))
		return
	}
	fmt.Println(ui.Error("Status: " + summary.Status))
	for _, msg := range summary.Errors {
		fmt.Println(ui.Dim("  " + msg))
	}
}
