// Package grpcserver exposes the standard gRPC health service so that
// orchestrators can probe the messaging service.
package grpcserver

import (
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"campus-messaging/internal/observability"
)

type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// New builds a gRPC server with tracing and metrics that reports serviceName
// and the overall server as SERVING.
func New(serviceName string) *Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	return &Server{grpc: srv, health: hs}
}

// Serve blocks until the listener fails or Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Stop flips every service to NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
