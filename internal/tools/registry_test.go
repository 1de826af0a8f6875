package tools

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestRegistry_CallSuccess(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register("echo", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		return map[string]string{"text": in.Text}, nil
	})

	out := r.Call(context.Background(), "echo", json.RawMessage(`{"text":"hello"}`))

	var got map[string]string
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["text"] != "hello" {
		t.Errorf("got %+v", got)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	out := r.Call(context.Background(), "nope", nil)

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(out, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Success {
		t.Errorf("success = true for unknown tool")
	}
	if envelope.Error != "unknown tool: nope" {
		t.Errorf("error = %q", envelope.Error)
	}
}

func TestRegistry_HandlerErrorBecomesEnvelope(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register("boom", func(ctx context.Context, args json.RawMessage) (any, error) {
		return nil, errors.New("course 42 not found")
	})

	out := r.Call(context.Background(), "boom", nil)

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(out, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Success || envelope.Error != "course 42 not found" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	noop := func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil }
	r.Register("zebra", noop)
	r.Register("alpha", noop)
	r.Register("mid", noop)

	want := []string{"alpha", "mid", "zebra"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistry_DuplicateRegisterPanics(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	noop := func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil }
	r.Register("dup", noop)

	defer func() {
		if recover() == nil {
			t.Errorf("second Register did not panic")
		}
	}()
	r.Register("dup", noop)
}
