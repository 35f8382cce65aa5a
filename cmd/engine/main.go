package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Victor-armando18/storefront-pricing/internal/config"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/currency"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/jsonlogic"
	"github.com/Victor-armando18/storefront-pricing/internal/infrastructure/kv"
	"github.com/Victor-armando18/storefront-pricing/internal/logging"
	"github.com/Victor-armando18/storefront-pricing/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	evaluator := jsonlogic.NewEvaluator()
	holder := infrastructure.NewSnapshotHolder(infrastructure.NewFileSettingsLoader(cfg.SettingsPath, evaluator), logger)
	if err := holder.Refresh(ctx); err != nil {
		logger.Fatal("failed to load settings", zap.String("path", cfg.SettingsPath), zap.Error(err))
	}
	go holder.Run(ctx, cfg.SettingsRefresh)

	store, err := kv.Open(kv.Options{Backend: cfg.KVBackend, FilePath: cfg.KVFilePath, DatabaseURL: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("failed to open kv store", zap.String("backend", cfg.KVBackend), zap.Error(err))
	}

	formatter := currency.NewFormatter(cfg.Locale, cfg.CurrencyLabel)
	svc := usecase.NewStorefrontService(holder, evaluator, store, formatter, logger)

	e := newRouter(svc, logger)

	go func() {
		logger.Info("storefront pricing listening", zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
