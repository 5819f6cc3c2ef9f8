package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sellerdesk/sellerdesk-backend/api/routes"
	"github.com/sellerdesk/sellerdesk-backend/internal/payments"
	"github.com/sellerdesk/sellerdesk-backend/internal/profile"
	"github.com/sellerdesk/sellerdesk-backend/internal/reports"
	"github.com/sellerdesk/sellerdesk-backend/internal/sales"
	"github.com/sellerdesk/sellerdesk-backend/pkg/config"
	"github.com/sellerdesk/sellerdesk-backend/pkg/db"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/metrics"
	"github.com/sellerdesk/sellerdesk-backend/pkg/migrate"
	"github.com/sellerdesk/sellerdesk-backend/pkg/redis"
	"github.com/sellerdesk/sellerdesk-backend/pkg/reportparser"
	"github.com/sellerdesk/sellerdesk-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	defaultPct, err := cfg.Commission.Percentage()
	if err != nil {
		logg.Error(context.Background(), "invalid commission config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	mutationMetrics := metrics.NewMutationMetrics(registry)

	salesRepo := sales.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())
	profileRepo := profile.NewRepository(dbClient.DB())

	var receipts payments.ReceiptStore
	if cfg.GCS.BucketName != "" {
		gcsClient, gcsErr := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if gcsErr != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", gcsErr)
			os.Exit(1)
		}
		receipts = gcsClient.BucketHandle("")
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, receipt uploads disabled")
	}

	salesService, err := sales.NewService(salesRepo, dbClient, logg, mutationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(paymentsRepo, salesRepo, dbClient, receipts, logg, mutationMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	profileService, err := profile.NewService(profileRepo, defaultPct, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	var reportsService reports.Service
	if cfg.ReportParser.BaseURL != "" {
		parser, parserErr := reportparser.NewClient(cfg.ReportParser)
		if parserErr != nil {
			logg.Error(context.Background(), "failed to create report parser client", parserErr)
			os.Exit(1)
		}
		reportsService, err = reports.NewService(parser, salesRepo, logg, mutationMetrics)
		if err != nil {
			logg.Error(context.Background(), "failed to create reports service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "report parser not configured, report uploads disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			RedisClient: redisClient,
			Gatherer:    registry,
			Sales:       salesService,
			Payments:    paymentsService,
			Reports:     reportsService,
			Profiles:    profileService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
