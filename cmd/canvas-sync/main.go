// canvas-sync mirrors Canvas LMS course data into a local SQLite database
// and serves it to agents as callable tools.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/canvas"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/config"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "canvas-sync",
	Short: "Mirror Canvas LMS data into a local SQLite database",
	Long: `canvas-sync keeps a local SQLite mirror of your Canvas courses,
assignments, modules, announcements, and conversations, and exposes
query and search tools over it.

Configuration comes from CANVAS_* environment variables or a
canvas-sync.yaml file (see --config). At minimum set:

  CANVAS_API_URL    https://your-institution.instructure.com
  CANVAS_API_TOKEN  a Canvas API access token`,
	SilenceUsage: true,
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies CLI overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

// newLogger builds the process logger. Daemon mode passes a rotating file
// writer; everything else logs human-readable lines to stderr.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// openStore opens the database and ensures the schema exists.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// newAdapter wires the remote API client from config.
func newAdapter(cfg *config.Config, log zerolog.Logger) (*canvas.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := canvas.NewHTTPClient(cfg.APIURL, cfg.APIToken)
	return canvas.NewAdapter(client, log), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
