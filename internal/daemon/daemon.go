// Package daemon runs sync on an interval in the background.
//
// The daemon:
// 1. Performs an initial full sync on startup
// 2. Re-syncs every configured interval
// 3. Watches the config file and picks up edits without a restart
// 4. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	syncsvc "github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/sync"
)

// debounceInterval batches rapid config-file writes (editors often write
// twice) into one reload.
const debounceInterval = 500 * time.Millisecond

// Daemon drives periodic sync runs.
type Daemon struct {
	svc        *syncsvc.Service
	interval   time.Duration
	termID     int64
	configFile string

	watcher *fsnotify.Watcher
	reload  chan struct{}

	// onReload is invoked after a debounced config change; the owner swaps
	// settings in.
	onReload func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger
}

// New builds a daemon. configFile may be empty to disable the watch;
// onReload may be nil.
func New(svc *syncsvc.Service, interval time.Duration, termID int64, configFile string, onReload func(), log zerolog.Logger) (*Daemon, error) {
	if svc == nil {
		return nil, fmt.Errorf("sync service cannot be nil")
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Daemon{
		svc:        svc,
		interval:   interval,
		termID:     termID,
		configFile: configFile,
		reload:     make(chan struct{}, 1),
		onReload:   onReload,
		log:        log.With().Str("component", "daemon").Logger(),
	}, nil
}

// RotatingLogWriter returns a size-capped, rotating log sink for daemon
// mode, where stderr goes nowhere useful.
func RotatingLogWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// Run blocks until ctx is cancelled. The first sync happens immediately.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)
	defer d.cancel()

	if d.configFile != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		d.watcher = watcher
		defer watcher.Close()

		// Watch the directory, not the file: editors replace files on
		// save, which drops a file-level watch.
		if err := watcher.Add(filepath.Dir(d.configFile)); err != nil {
			return fmt.Errorf("failed to watch config directory: %w", err)
		}

		d.wg.Add(1)
		go d.watchConfig(ctx)
	}

	d.log.Info().
		Dur("interval", d.interval).
		Int64("term_id", d.termID).
		Msg("daemon started")

	term := d.termID
	d.runSync(ctx, &term)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.wg.Wait()
			d.log.Info().Msg("daemon stopped")
			return nil
		case <-ticker.C:
			d.runSync(ctx, &term)
		case <-d.reload:
			d.log.Info().Str("file", d.configFile).Msg("config changed, reloading")
			if d.onReload != nil {
				d.onReload()
			}
		}
	}
}

// Stop cancels a running daemon.
func (d *Daemon) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Daemon) runSync(ctx context.Context, termID *int64) {
	start := time.Now()
	summary := d.svc.SyncAll(ctx, termID)
	d.log.Info().
		Str("status", summary.Status).
		Int("courses", summary.Courses).
		Int("assignments", summary.Assignments).
		Dur("took", time.Since(start)).
		Msg("scheduled sync finished")
}

// watchConfig forwards debounced write events for the config file into the
// reload channel.
func (d *Daemon) watchConfig(ctx context.Context) {
	defer d.wg.Done()

	var timer *time.Timer
	target := filepath.Clean(d.configFile)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				select {
				case d.reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}
