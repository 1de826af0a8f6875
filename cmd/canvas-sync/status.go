package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the local database currently holds",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
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

	ctx := cmd.Context()
	fmt.Println(ui.Title("Local database"))
	fmt.Println(ui.KV("Path", st.Path()))

	for _, table := range []string{
		"courses", "assignments", "modules", "module_items",
		"announcements", "conversations", "calendar_events", "files",
	} {
		var count int64
		// Table names come from the fixed list above, never user input.
		row := st.RawDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table)
		if err := row.Scan(&count); err != nil {
			fatal(err)
		}
		fmt.Println(ui.KV(table, count))
	}

	courses, err := st.ListCourses(ctx, "")
	if err != nil {
		fatal(err)
	}
	if len(courses) == 0 {
		fmt.Println(ui.Dim("\nNo courses synced yet. Run: canvas-sync sync"))
		return
	}

	fmt.Println()
	fmt.Println(ui.Title("Courses"))
	for _, c := range courses {
		line := fmt.Sprintf("  %s  %s", c.CourseCode, c.CourseName)
		if c.EndDate != nil && c.EndDate.Before(time.Now()) {
			line += ui.Dim("  (ended)")
		}
		fmt.Println(line)
	}
}
