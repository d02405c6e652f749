// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// foyer-hub is the hub daemon: it opens the session store, binds the
// websocket gateway, registers the built-in rooms, and runs the dialog
// pipeline until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/foyer-foundation/foyer/house"
	"github.com/foyer-foundation/foyer/lib/clock"
	"github.com/foyer-foundation/foyer/lib/config"
	"github.com/foyer-foundation/foyer/lib/sqlitepool"
	"github.com/foyer-foundation/foyer/lib/version"
	"github.com/foyer-foundation/foyer/overmind"
	"github.com/foyer-foundation/foyer/prompter"
	"github.com/foyer-foundation/foyer/room"
	"github.com/foyer-foundation/foyer/rooms/analysis"
	"github.com/foyer-foundation/foyer/rooms/history"
	"github.com/foyer-foundation/foyer/rooms/interpret"
	"github.com/foyer-foundation/foyer/rooms/prompt"
	"github.com/foyer-foundation/foyer/session"
	"github.com/foyer-foundation/foyer/speech"
	"github.com/foyer-foundation/foyer/station"
	"github.com/foyer-foundation/foyer/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var verbose bool

	flagSet := pflag.NewFlagSet("foyer-hub", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to foyer.yaml (overrides FOYER_CONFIG)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Handle --version before flag parsing to match other Foyer binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("foyer-hub")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printUsage(flagSet)
			return nil
		}
		return err
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	ctx := context.Background()
	clk := clock.Real()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   filepath.Join(cfg.DataDir, "foyer.db"),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions, err := session.OpenStore(ctx, session.StoreConfig{
		Pool:   pool,
		TTL:    cfg.SessionTTL,
		Clock:  clk,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	registry := room.NewRegistry(logger)
	registry.Register(interpret.New())
	if len(cfg.AnalysisRules) > 0 {
		registry.Register(analysis.New(cfg.AnalysisRules))
	}
	historyRoom, err := history.Open(ctx, history.Config{Pool: pool, Clock: clk, Logger: logger})
	if err != nil {
		return err
	}
	registry.Register(historyRoom)
	if cfg.Prompter.Enabled {
		registry.Register(prompt.New(cfg.Prompter.Message))
	}

	inbound := transport.NewMemoryChannel(logger)
	outbound := transport.NewMemoryChannel(logger)
	defer inbound.Close()
	defer outbound.Close()

	h := &house.House{
		Hub:             cfg.HubID,
		WorkingLanguage: cfg.WorkingLanguage,
		Inbound:         inbound,
		Outbound:        outbound,
		Sessions:        sessions,
		Workers:         cfg.Workers,
		MaxPayloadBytes: cfg.MaxPayloadBytes,
		Clock:           clk,
		Logger:          logger,
	}
	h.Pipeline = &overmind.Coordinator{
		Hub:             cfg.HubID,
		WorkingLanguage: cfg.WorkingLanguage,
		Registry:        registry,
		Outbound:        h,
		Logger:          logger,
	}
	h.Prompter = prompter.New(prompter.Config{
		Enabled:      cfg.Prompter.Enabled,
		InitialDelay: cfg.Prompter.InitialDelay,
		RepeatDelay:  cfg.Prompter.RepeatDelay,
		MaxNags:      cfg.Prompter.MaxNags,
	}, clk, cfg.HubID, h.InjectRequest, logger)

	if cfg.Speech.APIKey != "" {
		service := speech.NewService(cfg.Speech, logger)
		h.Recognizer = service
		h.Translator = service
	} else {
		logger.Info("speech service disabled, no api key configured")
	}

	if cfg.StationCatalog != "" {
		catalog, err := station.LoadCatalog(cfg.StationCatalog)
		if err != nil {
			return err
		}
		h.Stations = catalog
		logger.Info("station catalog loaded",
			"path", cfg.StationCatalog, "stations", catalog.Len())
	}

	gateway := &transport.WSGateway{
		ListenAddr:    cfg.ListenAddr,
		Inbound:       inbound,
		Outbound:      outbound,
		MaxFrameBytes: int64(cfg.MaxPayloadBytes),
		IssueID:       sessions.NextClientID,
		Logger:        logger,
	}

	if err := h.Start(ctx); err != nil {
		return err
	}
	if err := gateway.Start(ctx); err != nil {
		h.Stop()
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", "signal", sig.String())

	// Gateway first so no new frames arrive, then the house with its
	// bounded drain. The pool closes last via the deferred Close.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gateway.Stop(shutdownCtx); err != nil {
		logger.Warn("gateway stop failed", "error", err)
	}
	h.Stop()
	return nil
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `foyer-hub - dialog hub daemon

Loads configuration from --config or the FOYER_CONFIG environment
variable, opens the session and history stores, and serves stations
over the websocket gateway until SIGINT or SIGTERM.

Usage:
  foyer-hub [flags]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
