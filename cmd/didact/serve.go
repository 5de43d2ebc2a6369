package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/didact/internal/config"
	"github.com/vango-dev/didact/internal/demo"
	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/metrics"
	"github.com/vango-dev/didact/pkg/server"
)

type serveOptions struct {
	configPath string
	host       string
	port       int
	app        string
}

func serveCmd(flags *globalFlags) *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo application over WebSocket",
		Long: `Serve a demo application.

GET / returns an HTML snapshot. GET /ws opens a live session that streams
mutation batches as the application's state changes.

Settings come from --config, else the nearest didact.json, else defaults.

Examples:
  didact serve
  didact serve --port=8080 --app=todo
  didact serve --config=./deploy/didact.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(opts)
			if err != nil {
				return err
			}

			// Flags set on the command line win over the config file.
			level, format := cfg.Log.Level, cfg.Log.Format
			if flags.logLevel != "" {
				level = flags.logLevel
			}
			if flags.logFormat != "" {
				format = flags.logFormat
			}
			logger, err := newLogger(cmd.ErrOrStderr(), level, format)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			app, err := demo.Lookup(opts.app)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprint(out, banner)
			success(out, "Serving %q on %s", opts.app, cfg.URL())
			if cfg.Path() != "" {
				info(out, "Config %s", cfg.Path())
			}
			if cfg.Metrics.Enabled {
				info(out, "Metrics at %s%s", cfg.URL(), cfg.Metrics.Path)
			}

			return newServer(cfg, app, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to didact.json")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from didact.json)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from didact.json)")
	cmd.Flags().StringVarP(&opts.app, "app", "a", demo.DefaultApp, fmt.Sprintf("Demo application %v", demo.Names()))

	return cmd
}

// loadServeConfig resolves the configuration and applies flag overrides.
func loadServeConfig(opts serveOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	default:
		cfg, err = config.LoadFromWorkingDir()
		if stderrors.Is(err, errors.New(errors.CodeConfigNotFound)) {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newServer(cfg *config.Config, app server.App, logger *slog.Logger) *server.Server {
	var tracer trace.Tracer = noop.NewTracerProvider().Tracer(cfg.Tracing.ServiceName)
	if cfg.Tracing.Enabled {
		tracer = otel.Tracer(cfg.Tracing.ServiceName)
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithTracer(tracer),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, server.WithMetrics(metrics.New()))
	}
	return server.New(cfg, app, opts...)
}
