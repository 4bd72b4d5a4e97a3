package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/feedbackportal/internal/bootstrap"
	"anoa.com/feedbackportal/internal/config"
	"anoa.com/feedbackportal/internal/server"
	"anoa.com/feedbackportal/pkg/database"
	"anoa.com/feedbackportal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseDSN(), database.DefaultOptions())
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if cfg.IsDevelopment() {
		if err := bootstrap.SeedStaffUser(db, log); err != nil {
			log.Fatal("failed to seed staff user", zap.Error(err))
		}
	}

	// Redis is optional: without it scores are read from the database,
	// cooldowns are off and the notification websocket is unavailable.
	redisClient, err := database.NewRedisClient(cfg.RedisURL, log)
	if err != nil {
		log.Warn("redis unavailable, running without cache", zap.Error(err))
		redisClient = nil
	}

	srv, err := server.NewServer(cfg, db, redisClient, log)
	if err != nil {
		log.Fatal("failed to build server", zap.Error(err))
	}
	srv.StartJobs()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	srv.Shutdown()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("server stopped")
}
