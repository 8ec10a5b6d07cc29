package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/musharraf10/MediMate/internal/config"
	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "medimate.db")
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Health.Addr = "127.0.0.1:0"
	return cfg
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "debug"
	l, err := newLogger(cfg)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel))

	cfg.Log.Level = "warn"
	cfg.Log.Development = true
	l, err = newLogger(cfg)
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))

	cfg.Log.Level = "loud"
	_, err = newLogger(cfg)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestOpenStorage_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	st, err := openStorage(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, st.ping(ctx))

	m, err := st.repo.Create(ctx, model.Medicine{
		Name:       "Aspirin",
		Quantity:   5,
		ExpiryDate: model.NewDate(2030, 1, 1),
		AddedDate:  time.Now().UTC(),
		UserID:     1,
	})
	require.NoError(t, err)
	st.close()

	// Reopening runs the migrations again without touching the data.
	st, err = openStorage(ctx, cfg)
	require.NoError(t, err)
	defer st.close()
	got, err := st.repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "Aspirin", got.Name)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "mysql"
	_, err := openStorage(context.Background(), cfg)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zaptest.NewLogger(t)) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
