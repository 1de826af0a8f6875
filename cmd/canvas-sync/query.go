package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/search"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/ui"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Resolve a natural-language assignment question",
	Long: `Parse a question like "when is the CS570 homework 2 due" into a course
and assignment reference and look it up locally.

Examples:
  canvas-sync query "cs570 hw2"
  canvas-sync query "when is the second math 225 problem set due"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuery,
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Full-text search across synced course content",
	Args:  cobra.MinimumNArgs(1),
	Run:   runSearch,
}

var deadlinesCmd = &cobra.Command{
	Use:   "deadlines",
	Short: "List upcoming assignment deadlines",
	Run:   runDeadlines,
}

func init() {
	deadlinesCmd.Flags().Int("days", 7, "How many days ahead to look")
	deadlinesCmd.Flags().String("range", "", `Natural-language range, e.g. "until next friday"`)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(deadlinesCmd)
}

func newSearchService(cmd *cobra.Command) (*search.Service, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg, nil)
	st, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	svc := search.NewService(st, cfg.CacheSize, cfg.CacheTTL, log)
	return svc, func() { _ = st.Close() }, nil
}

func runQuery(cmd *cobra.Command, args []string) {
	svc, release, err := newSearchService(cmd)
	if err != nil {
		fatal(err)
	}
	defer release()

	question := strings.Join(args, " ")
	details, err := svc.ResolveAssignment(cmd.Context(), question, 0)
	if err != nil {
		if err == store.ErrNotFound {
			fmt.Println(ui.Dim("No matching assignment found."))
			return
		}
		fatal(err)
	}

	a := details.Assignment
	fmt.Println(ui.Title(fmt.Sprintf("%s — %s", details.CourseCode, a.Title)))
	fmt.Println(ui.KV("Course", details.CourseName))
	fmt.Println(ui.KV("Type", a.AssignmentType))
	if a.DueDate != nil {
		fmt.Println(ui.KV("Due", a.DueDate.Local().Format("Mon Jan 2 15:04")))
	}
	if a.PointsPossible != nil {
		fmt.Println(ui.KV("Points", *a.PointsPossible))
	}
	for _, l := range details.PDFs {
		fmt.Println(ui.KV("PDF", l.URL))
	}
	fmt.Println(ui.Dim(fmt.Sprintf("  (confidence %.2f)", details.Parsed.Confidence)))
}

func runSearch(cmd *cobra.Command, args []string) {
	svc, release, err := newSearchService(cmd)
	if err != nil {
		fatal(err)
	}
	defer release()

	results, err := svc.Search(cmd.Context(), strings.Join(args, " "), "", 0)
	if err != nil {
		fatal(err)
	}
	if len(results) == 0 {
		fmt.Println(ui.Dim("No matches."))
		return
	}
	for _, r := range results {
		fmt.Printf("%s %s %s\n",
			ui.Label(r.CourseCode),
			r.Title,
			ui.Dim("["+r.ContentType+"]"))
	}
}

func runDeadlines(cmd *cobra.Command, args []string) {
	svc, release, err := newSearchService(cmd)
	if err != nil {
		fatal(err)
	}
	defer release()

	days, _ := cmd.Flags().GetInt("days")
	dateRange, _ := cmd.Flags().GetString("range")

	deadlines, err := svc.UpcomingDeadlines(cmd.Context(), days, dateRange, 0, 0)
	if err != nil {
		fatal(err)
	}
	if len(deadlines) == 0 {
		fmt.Println(ui.Dim("Nothing due."))
		return
	}
	for _, d := range deadlines {
		due := ""
		if d.DueDate != nil {
			due = d.DueDate.Local().Format("Mon Jan 2 15:04")
		}
		fmt.Printf("%s %s %s\n", ui.Label(due), d.AssignmentTitle, ui.Dim(d.CourseCode))
	}
}
