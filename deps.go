package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"PoolHTTPd/threadpool"
)

// Deps bundles the shared application dependencies injected via UberFX.
type Deps struct {
	fx.In

	Config    *Config
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Documents *DocumentStore
	Pool      *threadpool.ThreadPool
}
