package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/api"
	"github.com/stocksmith/shopd/internal/cache"
	"github.com/stocksmith/shopd/internal/config"
	"github.com/stocksmith/shopd/internal/repository/postgres"
	"github.com/stocksmith/shopd/internal/service"
	"github.com/stocksmith/shopd/internal/storage"
	"github.com/stocksmith/shopd/internal/supplier"
	"github.com/stocksmith/shopd/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	repos := postgres.NewRepos(db)
	txRunner := postgres.NewTxRunner(db)

	overviewCache, err := cache.NewOverviewCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, falling back to noop")
		overviewCache = cache.NewNoopOverviewCache()
	}

	var reports storage.ReportStore
	if cfg.Storage.Enabled {
		reports, err = storage.NewMinioStore(storage.MinioConfig{
			Endpoint:   cfg.Storage.Endpoint,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Bucket:     cfg.Storage.Bucket,
			UseSSL:     cfg.Storage.UseSSL,
			ScratchDir: cfg.Shop.ReportDir,
		})
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect object storage")
		}
	} else {
		reports = &storage.LocalStore{BaseDir: cfg.Shop.ReportDir}
	}

	registry := supplier.NewRegistry()
	registry.Register("default", supplier.NewHTTPClient("default", cfg.Supplier))

	catalogService := service.NewCatalogService(repos, registry)
	services := &api.Services{
		Ledger:    service.NewLedgerService(repos, txRunner),
		Catalog:   catalogService,
		Delivery:  service.NewDeliveryService(repos, txRunner, registry, catalogService, reports),
		Stocktake: service.NewStocktakeService(repos, txRunner, cfg.Shop.StocktakeChunkSize),
		Forecast:  service.NewForecastService(repos),
		Orders:    service.NewOrderService(repos, registry),
		Overview:  service.NewOverviewService(repos, overviewCache, cfg.Shop.ForecastHorizon),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
