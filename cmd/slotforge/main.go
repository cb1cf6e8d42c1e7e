// Command slotforge is the slot/style reconciliation service for the
// storefront page editor.
//
// Usage:
//
//	slotforge -config slotforge.yaml        # run with config file
//	slotforge -db slotforge.db              # run with defaults
//	slotforge -db slotforge.db -stats       # show stats and exit
//	slotforge -db slotforge.db -dump-slots page_abc  # dump slot records and exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	_ "modernc.org/sqlite"

	"slotforge/editor"
	"slotforge/guard"
)

func main() {
	configPath := flag.String("config", "", "path to slotforge.yaml config file")
	dbPath := flag.String("db", "", "path to SQLite database")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	showStats := flag.Bool("stats", false, "show stats and exit")
	dumpSlots := flag.String("dump-slots", "", "dump a page's slot records and exit")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, logger, *configPath, *dbPath, *addr, *showStats, *dumpSlots)
	stop()
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "usage: slotforge -config <file> | -db <path> [-addr :8080] [-stats] [-dump-slots <page>]")
			os.Exit(2)
		}
		logger.Error("slotforge: fatal", "error", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("no config file or database path given")

func run(ctx context.Context, logger *slog.Logger, configPath, dbPath, addr string, showStats bool, dumpSlots string) error {
	cfg, err := resolveConfig(configPath, dbPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTP.Addr = addr
	}

	ed, err := editor.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer ed.Close()

	// One-shot: stats.
	if showStats {
		stats, err := ed.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	// One-shot: dump slot records.
	if dumpSlots != "" {
		recs, err := ed.ListSlots(ctx, dumpSlots)
		if err != nil {
			return fmt.Errorf("dump slots: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	// Router.
	r := chi.NewRouter()
	r.Use(guard.SecurityHeaders(guard.DefaultHeaders()))
	r.Use(guard.MaxBody(cfg.HTTP.MaxBodyBytes))
	r.Use(guard.RequestID)
	ed.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("slotforge: serving", "addr", cfg.HTTP.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	logger.Info("slotforge: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func resolveConfig(configPath, dbPath string) (*editor.Config, error) {
	if configPath != "" {
		return editor.LoadConfigFile(configPath)
	}

	if dbPath == "" {
		return nil, errUsage
	}
	return &editor.Config{DBPath: dbPath}, nil
}
