package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/app"
	"github.com/nekogravitycat/shareit-backend/internal/config"
	"github.com/nekogravitycat/shareit-backend/internal/db"
	"github.com/nekogravitycat/shareit-backend/internal/logger"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, "shareit", cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
	if err != nil {
		zl.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(pool); err != nil {
			zl.Fatal("failed to migrate db", zap.Error(err))
		}
	}

	if err := request.RegisterValidators(); err != nil {
		zl.Fatal("failed to register validators", zap.Error(err))
	}

	if cfg.JWTSecret != "" && cfg.GatewaySecret == "" {
		zl.Warn("JWT_SECRET is set without GATEWAY_SECRET; tokens cannot be issued")
	}

	container := app.NewContainer(app.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		DBPool:         pool,
		Logger:         zl,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTAccessTokenTTL,
		GatewaySecret:  cfg.GatewaySecret,
		BookingStore:   cfg.BookingStore,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		zl.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zl.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited gracefully")
}
