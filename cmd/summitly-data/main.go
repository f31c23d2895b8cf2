package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"summitly-data/internal/analytics"
	"summitly-data/internal/config"
	httpapi "summitly-data/internal/http"
	"summitly-data/internal/repository"
	"summitly-data/internal/service"
	"summitly-data/internal/store"

	"summitly-data/common/database"
	logpkg "summitly-data/common/logger"
	rediscommon "summitly-data/common/redis"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "summitly-data")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis：互动事件流 + 热度计数 + 行情快照
	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(ctx, redisClient); err != nil {
		logger.Warn("Redis unreachable, engagement counters degrade", zap.Error(err))
	}
	kv := store.NewRedisKV(redisClient)

	// 存储层：优先 Postgres，连不上退回内存 repo（本地联调不依赖 DB）
	var (
		db           *sql.DB
		projectsRepo repository.ProjectsRepository
		unitsRepo    repository.UnitsRepository
		leadsRepo    repository.LeadsRepository
		homesRepo    repository.HomesRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for summitly-data")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		projectsRepo = repository.NewPostgresProjectsRepository(db)
		unitsRepo = repository.NewPostgresUnitsRepository(db)
		leadsRepo = repository.NewPostgresLeadsRepository(db)
		homesRepo = repository.NewPostgresHomesRepository(db)
	} else {
		memProjects := repository.NewMemoryProjectsRepo()
		projectsRepo = memProjects
		unitsRepo = repository.NewMemoryUnitsRepo(memProjects)
		leadsRepo = repository.NewMemoryLeadsRepo()
		homesRepo = repository.NewMemoryHomesRepo()
	}

	// 互动事件管道：HTTP 发布 → Stream → 消费者聚合计数
	var (
		engagementPub  service.EngagementPublisher
		engagementRead httpapi.EngagementReader
	)
	if cfg.Analytics.Enabled {
		publisher := analytics.NewPublisher(redisClient, cfg.Analytics.EventStream, logger)
		aggregator := analytics.NewAggregator(kv, time.Duration(cfg.Analytics.PopularTTL)*time.Second, logger)
		engagementPub = publisher
		engagementRead = aggregator

		consumer := analytics.NewEventConsumer(
			redisClient,
			aggregator,
			logger,
			cfg.Analytics.EventStream,
			cfg.Analytics.ConsumerGroup,
			cfg.Analytics.ConsumerName,
			cfg.Analytics.BatchSize,
		)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error("Engagement consumer stopped", zap.Error(err))
			}
		}()
	}

	geocoder := service.NewGeocodeClient(cfg.Geocode.BaseURL, cfg.Geocode.APIKey, cfg.Geocode.Email, logger)
	market := service.NewKVMarketData(kv, logger)

	projectService := service.NewProjectService(projectsRepo, geocoder, engagementPub, logger)
	unitService := service.NewUnitService(unitsRepo, projectsRepo, logger)
	leadService := service.NewLeadService(leadsRepo, engagementPub, logger)
	homeService := service.NewHomeService(homesRepo, market, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterProjectRoutes(httpapi.NewProjectHandler(projectService, unitService, logger))
	router.RegisterCalculatorRoutes(httpapi.NewCalculatorHandler(logger))
	router.RegisterLeadRoutes(httpapi.NewLeadHandler(leadService, logger))
	router.RegisterHomeRoutes(httpapi.NewHomeHandler(homeService, logger))
	router.RegisterAdminRoutes(httpapi.NewAdminAPI(projectService, unitService, leadService, engagementRead, logger))

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error("HTTP server error", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
