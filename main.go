package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

var version = "dev"

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("poolhttpd", pflag.ContinueOnError)

	flags.StringP("config", "c", "", "Path to the configuration file")
	flags.String("address", "127.0.0.1", "Address to listen on")
	flags.IntP("port", "p", 7878, "TCP port to listen on")
	flags.IntP("workers", "w", 4, "Number of pool workers")
	flags.String("log-level", "info", "Log level: none, debug, info or error")
	flags.String("index", "html/hello.html", "Path to the index document")
	flags.String("not-found", "html/404.html", "Path to the not-found document")
	flags.Duration("sleep", 5*time.Second, "Delay applied to /sleep requests")
	flags.BoolP("version", "v", false, "Print the version and exit")

	return flags
}

func newApp(flags *pflag.FlagSet) *fx.App {
	return fx.New(
		fx.Supply(flags),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Provide(
			ProvideConfig,
			ProvideLogger,
			ProvideRegistry,
			ProvidePoolMetrics,
			ProvideDocumentStore,
			ProvideThreadPool,
			ProvideConnectionHandler,
			ProvideHTTPServer,
		),
		fx.Invoke(RunMetrics, RunServer),
	)
}

func main() {
	flags := newFlagSet()

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}

		os.Exit(2)
	}

	if showVersion, _ := flags.GetBool("version"); showVersion {
		fmt.Println("poolhttpd", version)

		os.Exit(0)
	}

	// Run blocks until SIGINT or SIGTERM, then runs the stop hooks: listener first, then pool teardown.
	newApp(flags).Run()
}
