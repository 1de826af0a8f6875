package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	syncsvc "github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/sync"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/tools"
)

func newTestServer(t *testing.T) (*Server, *tools.Registry) {
	t.Helper()
	registry := tools.NewRegistry(zerolog.Nop())
	server := NewServer(0, registry, zerolog.Nop())
	if err := server.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })
	return server, registry
}

func dialWS(t *testing.T, ctx context.Context, server *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws://"+server.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func waitForClients(t *testing.T, server *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for server.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want %d", server.ClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServerStartStop(t *testing.T) {
	registry := tools.NewRegistry(zerolog.Nop())
	server := NewServer(0, registry, zerolog.Nop())

	if err := server.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if server.Addr() == "" {
		t.Fatal("server address is empty")
	}
	if err := server.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestSyncProgressBroadcast(t *testing.T) {
	server, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialWS(t, ctx, server)
	waitForClients(t, server, 1)

	server.SyncProgress("assignments", 12)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.Type != MessageTypeSyncProgress {
		t.Errorf("type = %s, want %s", msg.Type, MessageTypeSyncProgress)
	}
	if msg.Timestamp.IsZero() {
		t.Errorf("timestamp not set")
	}

	var progress SyncProgressData
	if err := json.Unmarshal(msg.Data, &progress); err != nil {
		t.Fatalf("unmarshal progress: %v", err)
	}
	if progress.Entity != "assignments" || progress.Count != 12 {
		t.Errorf("progress = %+v", progress)
	}
}

func TestSyncCompleteBroadcast(t *testing.T) {
	server, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialWS(t, ctx, server)
	waitForClients(t, server, 1)

	server.SyncComplete(&syncsvc.Summary{Courses: 2, Assignments: 5, Status: "complete"})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.Type != MessageTypeSyncComplete {
		t.Errorf("type = %s, want %s", msg.Type, MessageTypeSyncComplete)
	}

	var summary syncsvc.Summary
	if err := json.Unmarshal(msg.Data, &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summary.Courses != 2 || summary.Assignments != 5 || summary.Status != "complete" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestMultipleClients(t *testing.T) {
	server, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		dialWS(t, ctx, server)
	}
	waitForClients(t, server, 3)
}

func TestHealthEndpoint(t *testing.T) {
	server, registry := newTestServer(t)
	registry.Register("get_course_list", func(ctx context.Context, args json.RawMessage) (any, error) {
		return nil, nil
	})

	resp, err := http.Get(fmt.Sprintf("http://%s/health", server.Addr()))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var health struct {
		Status  string   `json:"status"`
		Clients int      `json:"clients"`
		Tools   []string `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q", health.Status)
	}
	if len(health.Tools) != 1 || health.Tools[0] != "get_course_list" {
		t.Errorf("tools = %v", health.Tools)
	}
}

func TestToolDispatch(t *testing.T) {
	server, registry := newTestServer(t)
	registry.Register("echo", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		return map[string]string{"text": in.Text}, nil
	})

	url := fmt.Sprintf("http://%s/tools/echo", server.Addr())
	resp, err := http.Post(url, "application/json", strings.NewReader(`{"text":"ping"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal %q: %v", body, err)
	}
	if got["text"] != "ping" {
		t.Errorf("got %+v", got)
	}
}

func TestToolDispatch_UnknownTool(t *testing.T) {
	server, _ := newTestServer(t)

	url := fmt.Sprintf("http://%s/tools/nope", server.Addr())
	resp, err := http.Post(url, "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Success || envelope.Error == "" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestToolDispatch_GetRejected(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/tools/echo", server.Addr()))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}
