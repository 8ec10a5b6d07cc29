// Command medimate-server serves the MediMate inventory REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/musharraf10/MediMate/internal/config"
	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/health"
	"github.com/musharraf10/MediMate/internal/metrics"
	"github.com/musharraf10/MediMate/internal/scheduler"
	httpserver "github.com/musharraf10/MediMate/internal/server/http"
	"github.com/musharraf10/MediMate/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// storageProbeInterval is how often the gRPC health status re-checks storage.
const storageProbeInterval = 15 * time.Second

// main loads configuration and serves until SIGINT or SIGTERM.
func main() {
	cfgPath := flag.String("config", "", "config file (yaml, toml or json); MEDIMATE_* env vars override it")
	flag.Parse()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level: %v", errs.ErrValidation, err)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// run serves the API, the optional health endpoint and the scheduler until
// ctx is done or one of them fails.
func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	svc := service.NewMedicineService(st.repo, cfg.Alerts.LowStockThreshold, service.WithLogger(log))
	opts := []httpserver.Option{
		httpserver.WithPing(st.ping),
		httpserver.WithCORSOrigins(cfg.HTTP.CORSOrigins...),
	}
	if m != nil {
		opts = append(opts, httpserver.WithMetrics(m))
	}
	api := httpserver.NewServer(cfg.HTTP.Addr, httpserver.New(svc, log, opts...).Router(), log)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		sched = scheduler.New(log, m, scheduler.Jobs(svc, st.ping, m, loc, log)...)
	}

	var hs *health.Server
	var hlis net.Listener
	if cfg.Health.Enabled {
		if hlis, err = net.Listen("tcp", cfg.Health.Addr); err != nil {
			return fmt.Errorf("health listen: %w", err)
		}
		hs = health.New(log)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(api.Start)
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if hs != nil {
			hs.Shutdown(sctx)
		}
		return api.Shutdown(sctx)
	})

	if hs != nil {
		g.Go(func() error {
			if err := hs.Serve(hlis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("health serve: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			hs.Monitor(gctx, storageProbeInterval, st.ping)
			return nil
		})
	}

	if sched != nil {
		g.Go(func() error { return sched.Run(gctx) })
	}

	return g.Wait()
}
