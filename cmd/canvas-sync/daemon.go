package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/daemon"
	syncsvc "github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/sync"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run periodic background sync",
	Long: `Run sync on an interval until interrupted. An initial full sync happens
immediately on startup.

When --config points at a file, edits to it are picked up without a
restart. Logs go to a rotating file when log_file is configured,
otherwise to stderr.

Example usage:
  canvas-sync daemon                      # Sync every hour (default)
  canvas-sync daemon --interval 15m       # Sync every 15 minutes
  canvas-sync daemon --config ./canvas-sync.yaml`,
	Run: runDaemon,
}

func init() {
	daemonCmd.Flags().Duration("interval", 0, "Sync interval (overrides config)")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fatal(err)
	}

	log := newLogger(cfg, nil)
	if cfg.LogFile != "" {
		log = newLogger(cfg, daemon.RotatingLogWriter(cfg.LogFile))
	}

	st, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	adapter, err := newAdapter(cfg, log)
	if err != nil {
		fatal(err)
	}

	svc := syncsvc.NewService(st, adapter, log,
		syncsvc.WithConversationWindow(cfg.SyncWindowDays))

	interval := cfg.SyncInterval
	if d, _ := cmd.Flags().GetDuration("interval"); d != 0 {
		interval = d
	}

	onReload := func() {
		if next, err := loadConfig(cmd); err == nil {
			cfg = next
		} else {
			log.Warn().Err(err).Msg("config reload failed, keeping previous settings")
		}
	}

	d, err := daemon.New(svc, interval, cfg.TermID, configFile, onReload, log)
	if err != nil {
		fatal(err)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		fmt.Fprintln(os.Stderr, "Shutting down...")
		d.Stop()
	}()

	if err := d.Run(cmd.Context()); err != nil {
		fatal(err)
	}
}
