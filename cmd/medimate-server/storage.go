package main

import (
	"context"
	"fmt"

	"github.com/musharraf10/MediMate/internal/config"
	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/migrate"
	"github.com/musharraf10/MediMate/internal/repository"
	"github.com/musharraf10/MediMate/internal/repository/postgres"
	"github.com/musharraf10/MediMate/internal/repository/sqlite"
)

type storage struct {
	repo  repository.MedicineRepository
	ping  func(context.Context) error
	close func()
}

// openStorage migrates and opens the configured backend.
func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := migrate.Up(ctx, cfg.Storage.DSN); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return &storage{repo: postgres.NewMedicineRepo(db), ping: db.Ping, close: db.Close}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		if err := migrate.UpDB(ctx, db.DB, config.DriverSQLite); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		return &storage{
			repo:  sqlite.NewMedicineRepo(db),
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown storage driver %q", errs.ErrValidation, cfg.Storage.Driver)
}
