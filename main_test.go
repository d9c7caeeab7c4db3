package main

import (
	"context"
	"testing"
	"time"

	"github.com/athapong/adf-mcp/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRefreshSystemMetricsStops(t *testing.T) {
	metrics.SystemGoroutines.Set(0)

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		refreshSystemMetrics(time.Millisecond, done)
		close(exited)
	}()

	deadline := time.After(time.Second)
	for testutil.ToFloat64(metrics.SystemGoroutines) == 0 {
		select {
		case <-deadline:
			t.Fatalf("system metrics were never refreshed")
		case <-time.After(time.Millisecond):
		}
	}

	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatalf("refresh loop kept running after stop")
	}
}

func TestStartMetricsServerStop(t *testing.T) {
	srv, stop := startMetricsServer("127.0.0.1:0")
	stop()
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
