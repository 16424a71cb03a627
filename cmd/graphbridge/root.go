package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/c360/graphbridge/session"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	server           string
	graph            string
	languages        []string
	timeout          time.Duration
	bearer           string
	username         string
	password         string
	independentReads bool
	logLevel         string
	logFormat        string
}

var (
	flags  globalFlags
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Command line client for remote RDF graph stores",
	Long: `graphbridge opens a session against a remote graph store and runs
queries and edits through it. Writes issued in one invocation are batched
and flushed before any read, so a read always observes the edits that
preceded it.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(flags.logLevel, flags.logFormat)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.server, "server", "", "Graph store base URL (required)")
	pf.StringVar(&flags.graph, "graph", "", "Data graph to open the session against (required)")
	pf.StringSliceVar(&flags.languages, "lang", nil, "Preferred literal languages, most preferred first")
	pf.DurationVar(&flags.timeout, "timeout", 30*time.Second, "Per-call timeout (0 waits forever)")
	pf.StringVar(&flags.bearer, "bearer", "", "Bearer token for authentication")
	pf.StringVar(&flags.username, "username", "", "Basic auth username")
	pf.StringVar(&flags.password, "password", "", "Basic auth password")
	pf.BoolVar(&flags.independentReads, "independent-reads", false,
		"Do not flush pending writes before reads")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log format (text, json, pretty)")

	_ = rootCmd.MarkPersistentFlagRequired("server")
	_ = rootCmd.MarkPersistentFlagRequired("graph")

	rootCmd.AddCommand(selectCmd, constructCmd, evalCmd, addCmd, removeCmd, containsCmd)
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	case "pretty":
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: lvl, TimeFormat: time.Kitchen})
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	return slog.New(handler)
}

// openSession builds a session from the persistent flags. Callers must Close
// it; Close flushes pending writes and ends the remote session.
func openSession(ctx context.Context) (*session.Session, error) {
	cfg := session.Config{
		ServerURL:        flags.server,
		DataGraph:        flags.graph,
		Languages:        flags.languages,
		IndependentReads: flags.independentReads,
		Request: session.RequestConfig{
			BearerToken: flags.bearer,
			Username:    flags.username,
			Password:    flags.password,
		},
	}
	return session.Open(ctx, cfg,
		session.WithLogger(logger),
		session.WithCallTimeout(flags.timeout),
	)
}
