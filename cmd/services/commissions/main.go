package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"salesdesk/config"
	"salesdesk/internal/database"
	"salesdesk/internal/payments/tmb"
	"salesdesk/internal/services/commissions/handler"
	"salesdesk/internal/services/commissions/rpc"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !cfg.DotEnvLoaded {
		logger.Debug("No .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to db", zap.Error(err))
	}

	if err := database.MigrateCommissionDB(db); err != nil {
		logger.Fatal("Failed to migrate commission database", zap.Error(err))
	}

	redisClient, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, assignment cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	var feed handler.PaymentFeed
	if cfg.Feed.BaseURL != "" {
		feed = tmb.NewClient(cfg.Feed.BaseURL, cfg.Feed.Token, cfg.Feed.Timeout, logger.Named("tmb"))
	} else {
		logger.Warn("TMB_FEED_URL not set, payments must be sent with each calculation")
	}

	lis, err := net.Listen("tcp", cfg.Service.ListenAddr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", cfg.Service.ListenAddr), zap.Error(err))
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))

	commissionHandler := handler.NewCommissionHandler(db, redisClient, feed, logger.Named("commissions"))
	rpc.Register(s, commissionHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(s)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down commission service")
		healthServer.Shutdown()
		s.GracefulStop()
	}()

	logger.Info("Commission service listening", zap.String("addr", cfg.Service.ListenAddr))
	if err := s.Serve(lis); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		began := time.Now()
		resp, err := next(ctx, req)
		logger.Info("rpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("took", time.Since(began)))
		return resp, err
	}
}
