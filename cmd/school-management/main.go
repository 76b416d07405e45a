// main is the entry point of the School Management application.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file, .env, or plain environment)
//  2. Initialise the logger
//  3. Open (and set up) the record store
//  4. Build the form controller and show the current records
//  5. Run the console front end in a separate goroutine
//  6. Block until the console ends or an OS signal (Ctrl+C / kill) arrives
//  7. Close the database and exit
//
// RUNNING:
//
//	go run ./cmd/school-management --config=config/local.yaml
//
// or (with environment variables only):
//
//	STORAGE_PATH=SchoolManagement.db go run ./cmd/school-management
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/school-management/internal/config"
	"github.com/aanand-mishra/school-management/internal/console"
	"github.com/aanand-mishra/school-management/internal/form"
	"github.com/aanand-mishra/school-management/internal/storage"
	"github.com/aanand-mishra/school-management/internal/storage/gormstore"
	"github.com/aanand-mishra/school-management/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Logs go to stderr so they never interleave with the records table
	// on stdout.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting school-management",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	store, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath),
		slog.String("driver", cfg.StorageDriver))

	// ── 4. Build the Controller ───────────────────────────────────────────
	con := console.New(os.Stdout, cfg.Prompt)
	ctrl := form.New(store, con)

	// Show whatever is already stored, as the window did on startup.
	if err := ctrl.Refresh(); err != nil {
		log.Error("failed to load records", slog.String("error", err.Error()))
	}

	// ── 5. Run the Console ────────────────────────────────────────────────
	// Only this goroutine touches the controller, so every command runs to
	// completion before the next one is read.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan error, 1)
	go func() {
		finished <- con.Run(ctx, os.Stdin, ctrl)
	}()

	// ── 6. Wait for the Console or a Signal ───────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-done:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()
	case err := <-finished:
		if err != nil {
			log.Error("console stopped", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// ── 7. Close Storage ──────────────────────────────────────────────────
	if err := store.Close(); err != nil {
		log.Error("failed to close storage", slog.String("error", err.Error()))
		exitCode = 1
	}

	log.Info("stopped")
	os.Exit(exitCode)
}

// openStorage returns the record store backend named by cfg.StorageDriver.
// The rest of the program only sees the storage.Storage interface.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverGorm:
		return gormstore.New(cfg)
	case config.DriverSQLite:
		return sqlite.New(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
