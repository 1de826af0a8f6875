package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/ui"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned and duplicate rows from the local database",
	Long: `Delete assignments whose course no longer exists, collapse duplicate
assignment rows to the earliest surviving row, and drop stale syllabus
copies.

This is deliberately a manual operation: regular syncing never deletes
rows, so stale data accumulates only across schema or account changes.`,
	Run: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) {
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

	report, err := st.Cleanup(cmd.Context())
	if err != nil {
		fatal(err)
	}

	fmt.Println(ui.Title("Cleanup"))
	fmt.Println(ui.KV("Orphan assignments", report.OrphanAssignments))
	fmt.Println(ui.KV("Duplicate assignments", report.DuplicateAssignments))
	fmt.Println(ui.KV("Duplicate syllabi", report.DuplicateSyllabi))
	fmt.Println(ui.Success("Done"))
}
