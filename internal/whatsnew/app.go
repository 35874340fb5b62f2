// Package whatsnew wires the what's-new notification pieces together.
package whatsnew

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/whatsnew/internal/core/config"
	"github.com/hay-kot/whatsnew/internal/core/kv"
	"github.com/hay-kot/whatsnew/internal/core/logging"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/data/db"
	"github.com/hay-kot/whatsnew/internal/data/stores"
	"github.com/hay-kot/whatsnew/internal/whatsnew/api"
	"github.com/hay-kot/whatsnew/internal/whatsnew/checker"
	"github.com/hay-kot/whatsnew/internal/whatsnew/dismissal"
	"github.com/hay-kot/whatsnew/pkg/executil"
)

// App is the central entry point for whatsnew operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Config     *config.Config
	DB         *db.DB
	KV         kv.KV
	Client     *api.Client
	Dismissals *dismissal.Store
	Checker    *checker.Checker
	Opener     *executil.Opener
	Detector   theme.Detector

	// Ephemeral is set when the database could not be opened and dismissals
	// only last for this process.
	Ephemeral bool
}

// Options holds the dependencies App cannot build from config alone.
type Options struct {
	UserAgent string
	Detector  theme.Detector
	Executor  executil.Executor
}

// Open builds an App from configuration. A database that cannot be opened
// is not fatal: corruption is moved aside and retried once, and anything
// else falls back to an in-memory store.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logging.Component("app", "data_dir", cfg.DataDir)

	client, err := api.NewClient(api.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.Timeout(),
		RatePerSec: cfg.API.RatePerSec,
		UserAgent:  opts.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	database, store := openStore(ctx, cfg, log)

	exec := opts.Executor
	if exec == nil {
		exec = &executil.RealExecutor{}
	}

	dismissals := dismissal.New(store)

	return &App{
		Config:     cfg,
		DB:         database,
		KV:         store,
		Client:     client,
		Dismissals: dismissals,
		Checker:    checker.New(client, dismissals),
		Opener:     executil.NewOpener(exec),
		Detector:   opts.Detector,
		Ephemeral:  database == nil,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*db.DB, kv.KV) {
	opts := db.DefaultOpenOptions()
	opts.BusyTimeout = cfg.Database.BusyTimeout.Std()

	database, err := db.Open(cfg.DataDir, opts)
	if err != nil && stores.IsCorruptionError(err) {
		log.Warn().Err(err).Msg("database corrupt, moving it aside")
		if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
			err = errors.Join(err, rerr)
		} else {
			database, err = db.Open(cfg.DataDir, opts)
		}
	}

	if err != nil {
		ev := log.Warn().Err(err)
		if stores.IsBusyError(err) {
			ev = ev.Bool("busy", true)
		}
		ev.Msg("database unavailable, dismissals will not persist")
		return nil, stores.NewMemoryKVStore()
	}

	store := stores.NewKVStore(database)
	if n, err := store.Len(ctx); err == nil {
		log.Debug().Str("path", cfg.DatabasePath()).Int("keys", n).Msg("store opened")
	}

	return database, store
}

// Close releases the database, if one is open.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
