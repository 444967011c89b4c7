package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"PoolHTTPd/threadpool"
)

const metricsNamespace = "poolhttpd"

// ProvideConfig loads the configuration from file, environment and flags.
func ProvideConfig(flags *pflag.FlagSet) (*Config, error) {
	return NewConfigFile(flags)
}

// ProvideLogger creates a structured logger based on the configuration.
func ProvideLogger(cfg *Config) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}

	if cfg != nil {
		switch cfg.Server.Logging.Level {
		case "none":
			return slog.New(slog.DiscardHandler)
		case "debug":
			handlerOpts.Level = slog.LevelDebug
			handlerOpts.AddSource = true
		case "error":
			handlerOpts.Level = slog.LevelError
		default:
			handlerOpts.Level = slog.LevelInfo
		}

		if cfg.Server.Logging.UseSystemd {
			handlerOpts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) == 0 && a.Key == slog.TimeKey {
					return slog.Attr{}
				}

				return a
			}
		}

		if cfg.Server.Logging.JSON {
			return slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
		}
	}

	return slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
}

// ProvideRegistry creates the Prometheus registry shared by all collectors of the process.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// ProvidePoolMetrics registers the thread pool collectors.
func ProvidePoolMetrics(reg *prometheus.Registry) (*threadpool.Metrics, error) {
	return threadpool.NewMetrics(reg, metricsNamespace)
}

// ProvideDocumentStore creates the store serving the index and not-found documents.
func ProvideDocumentStore(cfg *Config) *DocumentStore {
	return NewDocumentStore(cfg.Documents.CacheTTL)
}

// ProvideThreadPool starts the worker pool and registers its teardown with the lifecycle.
func ProvideThreadPool(lc fx.Lifecycle, cfg *Config, logger *slog.Logger, metrics *threadpool.Metrics) (*threadpool.ThreadPool, error) {
	pool, err := threadpool.New(
		cfg.Server.Workers,
		threadpool.WithLogger(logger),
		threadpool.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})

			go func() {
				defer close(done)

				pool.Shutdown()
			}()

			select {
			case <-done:
				return nil
			case <-ctx.Done():
				logger.Error("Thread pool did not stop in time", slog.String("error", ctx.Err().Error()))

				return ctx.Err()
			}
		},
	})

	return pool, nil
}

// ProvideConnectionHandler creates the per-connection HTTP handler.
func ProvideConnectionHandler(deps Deps) *ConnectionHandler {
	return NewConnectionHandler(deps.Config, deps.Documents, deps.Logger)
}

// ProvideHTTPServer creates the listener that feeds accepted connections into the pool.
func ProvideHTTPServer(cfg *Config, logger *slog.Logger, pool *threadpool.ThreadPool) *HTTPServer {
	return NewHTTPServer(cfg.Server.Listen.String(), pool, logger)
}
