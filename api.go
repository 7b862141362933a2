package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gurbos/dcdb/bbapi"
	ds "github.com/gurbos/dcdb/datastore"
	"github.com/gurbos/dcdb/importer"
)

type application struct {
	cfg     Config
	logger  *slog.Logger
	fetcher *bbapi.Fetcher
}

// SnapshotSource is a finished snapshot database.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (*ds.Snapshot, error)
}

// SnapshotPublisher receives a copy of a finished snapshot.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *ds.Snapshot) error
}

func newApplication(cfg Config, logger *slog.Logger) *application {
	client := bbapi.NewRestyClient(cfg.BaseURL, cfg.HTTPTimeout, logger)
	fetcher := bbapi.NewFetcher(client, logger, bbapi.WithRetries(cfg.MaxRetries, cfg.RetryBaseDelay))
	return &application{cfg: cfg, logger: logger, fetcher: fetcher}
}

func (app *application) fetchReference(ctx context.Context) (bbapi.ReferenceData, error) {
	return bbapi.NewBundleExtractor(app.fetcher, app.logger).FetchReferenceData(ctx)
}

// importSnapshot creates a fresh database at path and fills it. The schema is
// created before any request goes out, so an occupied file fails fast.
func (app *application) importSnapshot(ctx context.Context, path string, overwrite bool) (*ds.SQLiteDataStore, importer.Summary, error) {
	if overwrite {
		if err := removeDatabase(path); err != nil {
			return nil, importer.Summary{}, err
		}
	}

	store, err := ds.CreateSchema(ctx, path, app.logger)
	if err != nil {
		return nil, importer.Summary{}, err
	}
	app.logger.Info("created schema", "path", path)

	im := importer.New(store,
		bbapi.NewBundleExtractor(app.fetcher, app.logger),
		bbapi.NewClient(app.fetcher),
		importer.Options{
			RequestDelay: app.cfg.RequestDelay,
			PageWarnSize: app.cfg.PageWarnSize,
			Logger:       app.logger,
		})
	summary, err := im.Run(ctx)
	if err != nil {
		store.Close()
		return nil, summary, err
	}
	return store, summary, nil
}

// mirror copies the finished snapshot to the publisher.
func (app *application) mirror(ctx context.Context, src SnapshotSource, dst SnapshotPublisher) error {
	snap, err := src.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	app.logger.Info("publishing snapshot to postgres",
		"cards", len(snap.Cards), "talents", len(snap.Talents), "prerequisites", len(snap.Prerequisites))
	return dst.Publish(ctx, snap)
}

func (app *application) connectMirror(ctx context.Context) (*ds.PostgresDataStore, error) {
	config, err := ds.Config(app.cfg.ConnectString())
	if err != nil {
		return nil, err
	}
	pool, err := ds.NewDBPool(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("Error creating DB connection pool: %w", err)
	}
	return ds.NewPostgresDataStore(pool, app.logger), nil
}

func removeDatabase(path string) error {
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("Error removing %s: %w", p, err)
		}
	}
	return nil
}
