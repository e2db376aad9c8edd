package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/medikart/pos-engine/internal/config"
	"github.com/medikart/pos-engine/internal/repository/mongodb"
	"github.com/medikart/pos-engine/internal/repository/sheets"
	"github.com/medikart/pos-engine/internal/scheduler"
	"github.com/medikart/pos-engine/internal/server/handlers"
	"github.com/medikart/pos-engine/internal/server/router"
	possvc "github.com/medikart/pos-engine/internal/service/pos"
	reportingsvc "github.com/medikart/pos-engine/internal/service/reporting"
	"github.com/medikart/pos-engine/internal/service/stock"
	"github.com/medikart/pos-engine/pkg/clients/inventory"
	"github.com/medikart/pos-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(os.Getenv("LOG_DEBUG") == "true"))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	journal, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb journal", zap.Error(err))
	}
	defer func() {
		if err := journal.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheets.Repository
	if cfg.SheetsEnabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("sales summary export enabled")
	} else {
		baseLogger.Warn("sheets export not configured, daily summaries will only be logged")
	}

	inventoryClient := inventory.NewClient(cfg.Inventory)
	batchAccessor := stock.NewAccessor(inventoryClient, baseLogger.Named("svc.stock"))
	engine := possvc.NewEngine(inventoryClient, journal, baseLogger.Named("svc.pos"))
	reportingSvc := reportingsvc.NewService(journal, sheetsRepo, baseLogger.Named("svc.reporting"))

	posHandler := handlers.NewPOSHandler(engine, batchAccessor, baseLogger.Named("handlers.pos"))
	ginEngine := router.New(posHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, engine, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
