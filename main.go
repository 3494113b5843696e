package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/n0madic/go-chorus/internal/api"
	"github.com/n0madic/go-chorus/internal/config"
	"github.com/n0madic/go-chorus/internal/stream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// app carries state shared by every subcommand.
type app struct {
	configPath string
	baseURL    string
	verbose    bool
	debug      bool
	jsonOut    bool

	stdout io.Writer
	stderr io.Writer

	cfg    *config.ClientConfig
	logger *slog.Logger
	client *api.Client
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "go-chorus",
		Short: "Command line client for the Chorus RAG backend",
		Long: `Manage datasets, chorus models and bots of a Chorus backend, upload
documents with live progress and chat with bots.

Configuration is read from the file given by --config, then CHORUS_*
environment variables, then command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", os.Getenv("CHORUS_CONFIG"), "Path to a YAML config file")
	flags.StringVar(&a.baseURL, "base-url", "", "API root URL (default "+config.BaseURLDefault+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&a.debug, "debug", false, "Dump HTTP requests and responses to stderr")
	flags.BoolVar(&a.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		newDatasetsCommand(a),
		newFilesCommand(a),
		newUploadCommand(a),
		newModelsCommand(a),
		newBotsCommand(a),
		newHealthCommand(a),
		newInfoCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if flags.Changed("debug") {
		cfg.Debug = a.debug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.stderr, cfg.Verbose)
	slog.SetDefault(a.logger)

	a.client, err = api.NewClient(cfg, api.WithLogger(a.logger), api.WithDebugOutput(a.stderr))
	return err
}

// newLogger logs text to a terminal and JSON otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// exitCode maps an error to the process exit status. Interrupted uploads
// exit like an interrupted shell command.
func exitCode(err error) int {
	if kind, ok := stream.KindOf(err); ok && kind == stream.Cancelled {
		return 130
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

func parseID(kind, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}
