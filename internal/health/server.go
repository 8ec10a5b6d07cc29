// Package health serves the standard grpc.health.v1 service so orchestrators
// can probe the inventory server on a port separate from the REST API.
package health

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported alongside the overall ("") status.
const Service = "medimate.Inventory"

type Server struct {
	gs  *grpc.Server
	hs  *grpchealth.Server
	log *zap.Logger
}

// New builds a health server that starts out SERVING.
func New(log *zap.Logger) *Server {
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
		),
	)
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	s := &Server{gs: gs, hs: hs, log: log}
	s.SetServing(true)
	return s
}

// SetServing flips both the overall and the inventory service status.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.hs.SetServingStatus("", st)
	s.hs.SetServingStatus(Service, st)
}

// Serve accepts connections on lis until Shutdown.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("health listening", zap.String("addr", lis.Addr().String()))
	return s.gs.Serve(lis)
}

// Monitor pings storage every interval and mirrors the result into the
// serving status. It returns when ctx is done.
func (s *Server) Monitor(ctx context.Context, every time.Duration, ping func(context.Context) error) {
	t := time.NewTicker(every)
	defer t.Stop()
	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		pctx, cancel := context.WithTimeout(ctx, every)
		err := ping(pctx)
		cancel()
		if ok := err == nil; ok != healthy {
			healthy = ok
			s.SetServing(ok)
			if ok {
				s.log.Info("storage reachable again")
			} else {
				s.log.Warn("storage unreachable", zap.Error(err))
			}
		}
	}
}

// Shutdown reports NOT_SERVING to watchers and stops gracefully, forcing the
// stop once ctx expires.
func (s *Server) Shutdown(ctx context.Context) {
	s.hs.Shutdown()
	done := make(chan struct{})
	go func() {
		s.gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.gs.Stop()
		<-done
	}
}
