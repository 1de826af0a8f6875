package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/dashboard"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/extract"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/search"
	syncsvc "github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/sync"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool API and sync-progress dashboard",
	Long: `Start the HTTP server exposing every tool as POST /tools/{name} plus a
WebSocket endpoint streaming sync progress.

Endpoints:
  POST /tools/{name}   Call a tool; body is the JSON arguments
  GET  /health         Server health and registered tool names
  WS   /ws             sync_progress / sync_complete event stream

Example usage:
  canvas-sync serve               # Start on the configured port (default 8080)
  canvas-sync serve --port 9000   # Start on a custom port`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
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

	searchSvc := search.NewService(st, cfg.CacheSize, cfg.CacheTTL, log)
	registry := tools.NewRegistry(log)

	port := cfg.DashboardPort
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		port = p
	}
	server := dashboard.NewServer(port, registry, log)

	syncSvc := syncsvc.NewService(st, adapter, log,
		syncsvc.WithConversationWindow(cfg.SyncWindowDays),
		syncsvc.WithNotifier(server))

	tools.RegisterAll(registry, tools.Deps{
		Store:     st,
		Sync:      syncSvc,
		Search:    searchSvc,
		Adapter:   adapter,
		Extractor: extract.New(log),
		UserID:    cfg.UserID,
	})

	if err := server.Start(); err != nil {
		fatal(err)
	}

	fmt.Printf("Server started on http://localhost:%d\n", port)
	fmt.Printf("Tool endpoint:      POST http://localhost:%d/tools/{name}\n", port)
	fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
	fmt.Println("\nPress Ctrl+C to stop...")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	if err := server.Stop(); err != nil {
		fatal(err)
	}
}
