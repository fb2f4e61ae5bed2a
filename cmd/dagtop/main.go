// dagtop is a terminal run table for a Dagster-style orchestrator.
//
// It polls the orchestrator's GraphQL API and renders the run list with
// multi-select, tag pinning, and bulk terminate/delete.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/jeremylgl2/dagster/internal/dagapi"
	"github.com/jeremylgl2/dagster/internal/observability"
	"github.com/jeremylgl2/dagster/internal/runtable"
)

const resolverCacheSize = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dagtop:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", defaultConfigPath(), "path to the YAML config file")
		endpoint   = flag.String("endpoint", "", "GraphQL endpoint URL (overrides config)")
		interval   = flag.Duration("interval", 0, "poll interval (overrides config)")
		logPath    = flag.String("log", "", "log file path (overrides config)")
	)
	flag.Parse()

	fs := afero.NewOsFs()

	cfg, err := dagapi.LoadConfig(fs, *configPath)
	if err != nil {
		return err
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if *interval > 0 {
		cfg.PollInterval = dagapi.Duration(*interval)
	}
	if *logPath != "" {
		cfg.LogFile = *logPath
	}
	if cfg.PinFile == "" {
		cfg.PinFile = filepath.Join(filepath.Dir(*configPath), "unpinned_tags.json")
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("dagtop: starting", "endpoint", cfg.Endpoint)

	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	client := dagapi.NewClient(cfg.Endpoint, logger)
	pins := runtable.NewPinStore(fs, cfg.PinFile, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var table *runtable.Table
	table = runtable.NewTable(runtable.TableParams{
		Pins:     pins,
		Resolver: resolver,
		Logger:   logger,
		OnAddTag: func(token string) {
			table.SetFilter(strings.TrimPrefix(token, "tag:"))
		},
		OnTerminate: func(ids []string) {
			go mutateRuns(ctx, logger, ids, client.TerminateRun)
		},
		OnDelete: func(ids []string) {
			go mutateRuns(ctx, logger, ids, client.DeleteRun)
		},
	})

	msgs := make(chan tea.Msg, 16)
	poller := dagapi.NewPoller(client, cfg, msgs, logger)
	poller.Start(ctx)

	model := runtable.NewModel(runtable.ModelParams{
		Table:  table,
		Msgs:   msgs,
		Logger: logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// mutateRuns applies a run mutation to each id sequentially, logging
// failures. Results show up in the table on the next poll.
func mutateRuns(
	ctx context.Context,
	logger *observability.CoreLogger,
	ids []string,
	mutate func(context.Context, string) error,
) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	for _, id := range ids {
		if err := mutate(ctx, id); err != nil {
			logger.CaptureError(err)
		}
	}
}

func newResolver(cfg dagapi.Config) (runtable.WorkspaceResolver, error) {
	locations := make(map[string]bool, len(cfg.Locations))
	for _, loc := range cfg.Locations {
		locations[loc] = true
	}
	return runtable.NewCachingResolver(
		runtable.StaticResolver{Locations: locations}, resolverCacheSize)
}

// newLogger opens a file-backed slog logger. The TUI owns the terminal,
// so with no log file configured everything is discarded.
func newLogger(path string) (*observability.CoreLogger, func(), error) {
	if path == "" {
		return observability.NewNoOpLogger(), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	logger := observability.NewCoreLogger(slog.New(slog.NewJSONHandler(f, nil)))
	return logger, func() { _ = f.Close() }, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "dagtop.yaml"
	}
	return filepath.Join(dir, "dagtop", "config.yaml")
}
