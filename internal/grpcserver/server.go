// Package grpcserver exposes the standard gRPC health service so the hostel
// service can be probed by Kubernetes and service meshes.
package grpcserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/health"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health status key for the hostel store.
const ServiceName = "hostel.v1.HostelService"

type Server struct {
	grpc   *grpc.Server
	health *grpchealth.Server
	logger *slog.Logger
}

func New(logger *slog.Logger, rpc *metrics.RPCMetrics) *Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(rpc.UnaryInterceptor()),
	)

	healthServer := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	reflection.Register(s)

	return &Server{grpc: s, health: healthServer, logger: logger}
}

// SetServing flips the hostel service status reported to health clients.
func (s *Server) SetServing(serving bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// WatchDependencies pings every check each interval and reports the hostel
// service as serving only while all of them answer.
func (s *Server) WatchDependencies(ctx context.Context, checks map[string]health.Checker, interval time.Duration) {
	probe := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		serving := true
		for name, check := range checks {
			if err := check.Ping(pingCtx); err != nil {
				s.logger.WarnContext(ctx, "dependency check failed", "dependency", name, "error", err)
				serving = false
			}
		}
		s.SetServing(serving)
	}

	probe()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

func (s *Server) Run(port string) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	s.logger.Info("gRPC server starting", "port", port)
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
