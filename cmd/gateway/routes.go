package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salesdesk/config"
	"salesdesk/internal/gateway/clients"
	"salesdesk/internal/gateway/handlers"
	"salesdesk/internal/gateway/middleware"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	columns, err := config.WatchColumns(ctx, cfg.ColumnsFile, logger.Named("columns"))
	if err != nil {
		logger.Fatal("Failed to load column aliases", zap.String("path", cfg.ColumnsFile), zap.Error(err))
	}
	defer columns.Close()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	grpcClients, err := clients.NewGRPCClients(cfg.Service.Target, logger)
	if err != nil {
		logger.Fatal("Failed to create gRPC clients", zap.Error(err))
	}
	defer grpcClients.Close()

	rateLimit, err := middleware.RateLimit(cfg.Gateway.RateLimit)
	if err != nil {
		logger.Fatal("Failed to configure rate limiter", zap.Error(err))
	}

	if cfg.Log.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(middleware.CORS(cfg.Gateway.AllowedOrigins))
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(rateLimit)

	commissionsHandler := handlers.NewCommissionsHTTPHandler(grpcClients.Commissions, columns.Columns, cfg.Gateway.RequestTimeout, logger.Named("gateway"))

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	{
		commissionsGroup := protected.Group("/commissions")
		{
			commissionsGroup.GET("/months", commissionsHandler.ListMonths)

			commissionsGroup.GET("/assignments/:month", commissionsHandler.GetAssignments)
			commissionsGroup.POST("/assignments/:month/preview", commissionsHandler.PreviewAssignments)
			commissionsGroup.PUT("/assignments/:month", commissionsHandler.ReplaceAssignments)

			commissionsGroup.POST("/payments/preview", commissionsHandler.PreviewPayments)
			commissionsGroup.GET("/payments", commissionsHandler.ListPayments)

			commissionsGroup.POST("/calculate", commissionsHandler.Calculate)
			commissionsGroup.POST("/export", commissionsHandler.Export)
		}
	}

	r.GET("/health", healthCheckHandler())
	r.GET("/health/detailed", detailedHealthCheckHandler(grpcClients))

	srv := &http.Server{
		Addr:    ":" + cfg.Gateway.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting gateway", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		logger.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("took", time.Since(began)))
	}
}

func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}

func detailedHealthCheckHandler(clients *clients.GRPCClients) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		services := map[string]interface{}{
			"commissions": checkServiceHealth(clients.IsCommissionsServiceHealthy(ctx)),
		}

		overallStatus := "healthy"
		for _, service := range services {
			if serviceMap, ok := service.(map[string]interface{}); ok {
				if serviceMap["status"] != "healthy" {
					overallStatus = "degraded"
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"overall_status": overallStatus,
			"services":       services,
			"timestamp":      time.Now(),
		})
	}
}

func checkServiceHealth(isHealthy bool) map[string]interface{} {
	if !isHealthy {
		return map[string]interface{}{
			"status":  "unavailable",
			"message": "Service not serving or connection lost",
		}
	}
	return map[string]interface{}{
		"status":  "healthy",
		"message": "Service is responding",
	}
}
