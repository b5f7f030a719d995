package run

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestUntil_ReturnsZeroOnCleanExit(t *testing.T) {
	r := New(nil)
	code := r.until(context.Background(), func(context.Context) error { return http.ErrServerClosed })
	if code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
}

func TestUntil_ReturnsOneOnError(t *testing.T) {
	r := New(nil)
	code := r.until(context.Background(), func(context.Context) error { return errors.New("bind failed") })
	if code != 1 {
		t.Fatalf("expected 1, got %d", code)
	}
}

func TestUntil_ContextCancelled(t *testing.T) {
	r := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := r.until(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	if code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
}

func TestGraceful_RunsAllHooks(t *testing.T) {
	r := New(nil)
	var calls []string
	r.Graceful(time.Second,
		func(context.Context) error { calls = append(calls, "http"); return errors.New("slow") },
		nil,
		func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected deadline on shutdown context")
			}
			calls = append(calls, "grpc")
			return nil
		},
	)
	if len(calls) != 2 || calls[0] != "http" || calls[1] != "grpc" {
		t.Fatalf("unexpected hook order: %v", calls)
	}
}
