package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/didact/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┬┌┬┐┌─┐┌─┐┌┬┐
   │││ │││├─┤│   │
  ─┴┘┴─┴┘┴ ┴└─┘ ┴
`

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		format, _ := cmd.PersistentFlags().GetString("log-format")
		reportError(os.Stderr, err, format)
		os.Exit(1)
	}
}

// reportError prints err for a terminal, or as one JSON line when logs are
// JSON.
func reportError(w io.Writer, err error, format string) {
	if !strings.EqualFold(format, "json") {
		errors.PrintError(w, err)
		return
	}
	var de *errors.DidactError
	if !stderrors.As(err, &de) {
		de = &errors.DidactError{Category: errors.CategoryCLI, Message: err.Error()}
	}
	fmt.Fprintln(w, de.FormatJSON())
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "didact",
		Short: "Render and serve fiber-reconciled component trees",
		Long: `didact renders component trees with an incremental fiber reconciler.

The render command prints the HTML of a demo application after an optional
number of simulated clicks. The serve command streams live sessions to
WebSocket clients as binary mutation batches.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), flags.logLevel, flags.logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from didact.json)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default from didact.json)")

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(flags),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// newLogger builds a slog logger writing to w. Empty level and format mean
// info and text.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "", "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
