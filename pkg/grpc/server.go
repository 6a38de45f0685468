// Package grpc runs the internal gRPC endpoint used by orchestrators to probe
// the store. It serves the standard grpc.health.v1 service plus reflection.
//
//	srv := grpc.New()
//	go srv.Serve(lis)
//	...
//	srv.Stop()
//
// Every unary call passes through recovery, logging and Prometheus
// interceptors.
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// ServiceName is the health-check service name reported alongside "".
const ServiceName = "storefront"

var (
	handled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "grpc_server_handled_total",
		Help:      "gRPC calls completed, by method and code.",
	}, []string{"grpc_method", "grpc_code"})

	handling = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "grpc_server_handling_seconds",
		Help:      "gRPC call latency.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"grpc_method"})
)

func init() {
	metrics.MustRegister(handled, handling)
}

type Server struct {
	srv    *grpc.Server
	health *health.Server
}

func New() *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, loggingInterceptor, metricsInterceptor),
		grpc.MaxRecvMsgSize(4<<20),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{srv: srv, health: hs}
}

// Listen binds ":port" and serves in the background.
func (s *Server) Listen(port string) (net.Addr, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on :%s: %w", port, err)
	}
	go func() {
		if err := s.Serve(lis); err != nil {
			logger.Error("grpc: serve", "error", err)
		}
	}()
	logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return lis.Addr(), nil
}

// Serve blocks serving lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	err := s.srv.Serve(lis)
	if err == grpc.ErrServerStopped {
		return nil
	}
	return err
}

// SetServing flips the reported health of the storefront service.
func (s *Server) SetServing(ok bool) {
	st := grpc_health_v1.HealthCheckResponse_SERVING
	if !ok {
		st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// Stop reports NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("grpc: panic recovered",
				"method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logger.WithCtx(ctx).Debug("grpc: request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	)
	return resp, err
}

func metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	handled.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	handling.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	return resp, err
}
