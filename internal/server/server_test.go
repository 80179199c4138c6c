package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"product-dashboard/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{Server: config.ServerConfig{
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: 2 * time.Second,
	}}
}

func TestGracefulServer_ShutdownRunsHooks(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpServer := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}
	gs := NewGracefulServer(httpServer, logger, testConfig())

	var stopped atomic.Int32
	gs.RegisterShutdownHook("loader", func(ctx context.Context) error {
		stopped.Add(1)
		return nil
	})
	failure := errors.New("flush failed")
	gs.RegisterShutdownHook("broken", func(ctx context.Context) error {
		return failure
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("server did not answer: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, failure) {
			t.Errorf("expected hook failure to be reported, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if stopped.Load() != 1 {
		t.Errorf("loader hook ran %d times, want 1", stopped.Load())
	}
}

func TestGracefulServer_ServeErrorIsReturned(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gs := NewGracefulServer(&http.Server{}, logger, testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ln.Close()

	if err := gs.Serve(context.Background(), ln); err == nil {
		t.Error("expected error from a closed listener")
	}
}
