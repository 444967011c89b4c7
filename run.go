package main

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
)

// RunServer binds the listener when the application starts and stops accepting connections when it stops.
func RunServer(lc fx.Lifecycle, srv *HTTPServer, handler *ConnectionHandler, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := srv.Listen(); err != nil {
				return err
			}

			logger.Info("Starting server", slog.String("version", version))
			srv.Start(handler.HandleConnection)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Server stopping...")
			srv.Stop()

			return nil
		},
	})
}
