package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/grpc/middleware"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	infrahealth "github.com/Miraines/MoonyAndStarry/account-service/internal/infra/health"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported to gRPC health probes next to "".
const ServiceName = "account.v1.Account"

type StatusSource interface {
	Check(ctx context.Context) infrahealth.Report
}

// StartGRPCServer serves the standard health service until ctx is done.
// Serving status follows the dependency checker.
func StartGRPCServer(ctx context.Context, cfg *config.Config, checker StatusSource, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return err
	}

	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(middleware.ChainUnaryServer(logger)),
		grpc.StreamInterceptor(middleware.ChainStreamServer(logger)),
	}
	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		if err != nil {
			_ = lis.Close()
			return err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	grpc_prometheus.Register(grpcServer)
	grpc_prometheus.EnableHandlingTimeHistogram()
	reflection.Register(grpcServer)

	go WatchHealth(ctx, checker, hs, cfg.HealthInterval, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddress))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("stopping gRPC server")
	hs.Shutdown()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-stopCtx.Done():
		grpcServer.Stop()
	case <-done:
	}
	logger.Info("gRPC server stopped")
	return nil
}

// WatchHealth refreshes the serving status every interval until ctx ends.
func WatchHealth(ctx context.Context, checker StatusSource, hs *health.Server, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		SyncStatus(ctx, checker, hs, logger)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func SyncStatus(ctx context.Context, checker StatusSource, hs *health.Server, logger *zap.Logger) {
	report := checker.Check(ctx)

	status := healthpb.HealthCheckResponse_SERVING
	if !report.Healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn("dependency check failed", zap.Any("checks", report.Checks))
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(ServiceName, status)
}
