package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

func newMetricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return mux
}

// RunMetrics serves /metrics on its own listener when enabled. It never shares the pooled HTTP port.
func RunMetrics(lc fx.Lifecycle, cfg *Config, logger *slog.Logger, reg *prometheus.Registry) {
	if !cfg.Server.Metrics.Enabled {
		return
	}

	metricsServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Metrics.Address, strconv.Itoa(cfg.Server.Metrics.Port)),
		Handler:           newMetricsMux(reg),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", metricsServer.Addr)
			if err != nil {
				return err
			}

			logger.Info("Metrics endpoint is listening", slog.String("address", listener.Addr().String()))

			go func() {
				if err := metricsServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Metrics server error", slog.String("error", err.Error()))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return metricsServer.Shutdown(ctx)
		},
	})
}
