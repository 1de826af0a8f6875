package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/canvas"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
	syncsvc "github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/sync"
)

func newSyncService(t *testing.T) *syncsvc.Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	// Nil client: sync runs complete immediately with an error status,
	// which is all the daemon loop needs.
	return syncsvc.NewService(st, canvas.NewAdapter(nil, zerolog.Nop()), zerolog.Nop())
}

func TestNew_RequiresService(t *testing.T) {
	if _, err := New(nil, time.Hour, -1, "", nil, zerolog.Nop()); err == nil {
		t.Fatal("nil service accepted")
	}
}

func TestNew_DefaultsInterval(t *testing.T) {
	d, err := New(newSyncService(t), 0, -1, "", nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", d.interval)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	d, err := New(newSyncService(t), time.Hour, -1, "", nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_ReloadsOnConfigChange(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "canvas-sync.yaml")
	if err := os.WriteFile(configFile, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var reloads atomic.Int32
	d, err := New(newSyncService(t), time.Hour, -1, configFile,
		func() { reloads.Add(1) }, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Let the watcher attach, then rewrite the config twice in quick
	// succession; debouncing should collapse them into one reload.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(configFile, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := os.WriteFile(configFile, []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for reloads.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reload never fired")
		}
		time.Sleep(50 * time.Millisecond)
	}

	d.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	if n := reloads.Load(); n != 1 {
		t.Errorf("reloads = %d, want 1", n)
	}
}
