// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lotus-yoga/booking-api/internal/config"
	"github.com/lotus-yoga/booking-api/internal/database"
	"github.com/lotus-yoga/booking-api/internal/handler"
	"github.com/lotus-yoga/booking-api/internal/repository"
	"github.com/lotus-yoga/booking-api/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err)
	}

	ctx := context.Background()

	// ── 1. Connect to MongoDB ─────────────────────────────────────────────
	db, err := database.Connect(ctx, cfg.URI(), cfg.DBName)
	if err != nil {
		sugar.Fatalw("database error", "error", err)
	}
	defer func() {
		if err := database.Disconnect(context.Background(), db); err != nil {
			sugar.Errorw("disconnect error", "error", err)
		}
	}()
	sugar.Infow("connected to MongoDB", "database", cfg.DBName)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	classRepo := repository.NewClassRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	if err := purchaseRepo.EnsureIndexes(ctx); err != nil {
		sugar.Fatalw("index error", "error", err)
	}

	svc := service.NewBookingService(userRepo, instructorRepo, classRepo, purchaseRepo)
	h := handler.NewBookingHandler(svc, logger)

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		sugar.Infow("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server error", "error", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalw("graceful shutdown failed", "error", err)
	}
	sugar.Info("server stopped")
}
