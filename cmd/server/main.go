package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/aveongye/cst-case-study/internal/adapter/grpc"
	"github.com/aveongye/cst-case-study/internal/adapter/repository"
	"github.com/aveongye/cst-case-study/internal/config"
	"github.com/aveongye/cst-case-study/internal/logger"
	"github.com/aveongye/cst-case-study/internal/usecase/analytics"
	"github.com/aveongye/cst-case-study/internal/usecase/seeder"
)

func main() {
	configPath := flag.String("config", "", "Path to a configuration file; CST_* environment variables apply on top of defaults")
	flag.Parse()

	// 1. Load configuration and logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Open the configured store
	ctx := context.Background()
	stores, err := repository.Open(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open store", zap.String("storage", cfg.Storage), zap.Error(err))
	}
	defer stores.Close()

	if cfg.SeedDemo {
		demoSeeder := seeder.NewDemoSeeder(stores.Cashflows, cfg.CurrencyPolicy(), zlog)
		if err := demoSeeder.Seed(ctx); err != nil {
			zlog.Fatal("failed to seed demo fund", zap.Error(err))
		}
	}

	// 3. Initialize services
	analyticsService := analytics.NewAnalyticsService(stores.Cashflows, stores.Results, zlog)

	// 4. Start gRPC server with logging and auth interceptors
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(zlog),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterAnalyticsServiceServer(grpcServer, grpcadapter.NewServer(analyticsService, cfg.DefaultFund))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		zlog.Fatal("failed to listen", zap.String("address", cfg.GRPCAddress), zap.Error(err))
	}

	go func() {
		zlog.Info("gRPC server listening", zap.String("address", cfg.GRPCAddress), zap.String("storage", cfg.Storage))
		if err := grpcServer.Serve(lis); err != nil {
			zlog.Fatal("failed to serve gRPC server", zap.Error(err))
		}
	}()

	waitForShutdown(grpcServer, zlog)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, zlog *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	zlog.Info("shutting down gracefully", zap.String("signal", sig.String()))

	grpcServer.GracefulStop()
	zlog.Info("gRPC server stopped")
}
