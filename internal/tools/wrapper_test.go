package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWrap_Success(t *testing.T) {
	invoke := Wrap("demo", func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"answer": 42}, nil
	})

	r := invoke(context.Background(), nil)
	if r.Status != StatusSuccess {
		t.Errorf("Status = %q, want success", r.Status)
	}
	if r.Data["answer"] != 42 {
		t.Errorf("Data[answer] = %v, want 42", r.Data["answer"])
	}
}

func TestWrap_ErrorBecomesFailure(t *testing.T) {
	invoke := Wrap("demo", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	r := invoke(context.Background(), nil)
	if r.Status != StatusFailure {
		t.Errorf("Status = %q, want failure", r.Status)
	}
	if len(r.Assumptions) != 1 || !strings.Contains(r.Assumptions[0], "boom") {
		t.Errorf("Assumptions = %v, want error message", r.Assumptions)
	}
	if !strings.Contains(r.Assumptions[0], "errorString") {
		t.Errorf("Assumptions = %v, want error type named", r.Assumptions)
	}
}

func TestWrap_PanicRecovered(t *testing.T) {
	invoke := Wrap("demo", func(ctx context.Context, args map[string]any) (any, error) {
		panic("unexpected state")
	})

	r := invoke(context.Background(), nil)
	if r.Status != StatusFailure {
		t.Errorf("Status = %q, want failure", r.Status)
	}
	if len(r.Assumptions) != 1 || !strings.Contains(r.Assumptions[0], "unexpected state") {
		t.Errorf("Assumptions = %v, want panic value", r.Assumptions)
	}
}

func TestWrap_InjectsLatency(t *testing.T) {
	invoke := Wrap("demo", func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{}, nil
	})

	r := invoke(context.Background(), nil)
	debug, ok := r.Data["_debug"].(map[string]any)
	if !ok {
		t.Fatalf("Data[_debug] = %v, want map", r.Data["_debug"])
	}
	if _, ok := debug["latency_ms"].(int64); !ok {
		t.Errorf("latency_ms = %v, want int64", debug["latency_ms"])
	}
}
