package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"PoolHTTPd/threadpool"
)

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort failed: %v", err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi failed: %v", err)
	}

	return host, port
}

func TestProvideLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		info  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"error", false, false},
		{"none", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := ProvideLogger(&Config{Server: Server{Logging: Logging{Level: tt.level}}})
			ctx := context.Background()

			if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}

			if got := logger.Enabled(ctx, slog.LevelInfo); got != tt.info {
				t.Errorf("info enabled = %v, want %v", got, tt.info)
			}
		})
	}
}

func TestMetricsEndpointExposesPoolMetrics(t *testing.T) {
	reg := ProvideRegistry()

	metrics, err := ProvidePoolMetrics(reg)
	if err != nil {
		t.Fatalf("ProvidePoolMetrics failed: %v", err)
	}

	pool := threadpool.MustNew(1, threadpool.WithMetrics(metrics))
	_ = pool.Execute(func() {})
	pool.Shutdown()

	srv := httptest.NewServer(newMetricsMux(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	for _, name := range []string{
		"poolhttpd_pool_jobs_submitted_total 1",
		"poolhttpd_pool_jobs_completed_total 1",
		"poolhttpd_pool_busy_workers 0",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected metrics output to contain %q", name)
		}
	}
}
