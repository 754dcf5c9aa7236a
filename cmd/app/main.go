package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	nats "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/DIMSGN/inventory-app-sub000/internal/config"
	"github.com/DIMSGN/inventory-app-sub000/internal/model"
	"github.com/DIMSGN/inventory-app-sub000/internal/repository"
	"github.com/DIMSGN/inventory-app-sub000/internal/service"
	externalHttp "github.com/DIMSGN/inventory-app-sub000/internal/transport/http"
	"github.com/DIMSGN/inventory-app-sub000/pkg/cache"
	"github.com/DIMSGN/inventory-app-sub000/pkg/eventlog"
	"github.com/DIMSGN/inventory-app-sub000/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", false)
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logging.New(cfg.LogLevel, cfg.Pretty())

	// подключаем Postgres
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Postgres")
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Postgres")
	}

	// применяем миграции Postgres с помощью golang-migrate
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrate driver")
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations/postgres", "postgres", driver)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrate instance")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	// подключаем Redis и NATS
	cacheClient := cache.NewRedisClient(&redis.Options{Addr: cfg.RedisAddr})
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	events := eventlog.NewClient(nc, cfg.NATSSubject)
	log.Info().Str("subject", events.Subject()).Msg("publishing events to NATS")

	// репозитории и сервисы
	productRepo := repository.NewProductRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	unitRepo := repository.NewUnitRepository(db)

	services := externalHttp.Services{
		Products:   service.NewProductsService(productRepo, ruleRepo, cacheClient, events, log, cfg.RedisTTL),
		Rules:      service.NewRulesService(ruleRepo, productRepo, cacheClient, events, log, cfg.RedisTTL),
		Categories: service.NewReferenceService(model.EntityCategory, categoryRepo, cacheClient, events, log),
		Units:      service.NewReferenceService(model.EntityUnit, unitRepo, cacheClient, events, log),
		Inventory:  service.NewInventoryService(productRepo, ruleRepo, unitRepo, categoryRepo),
	}

	// метрики процесса и HTTP
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := externalHttp.NewMetrics(reg)

	// HTTP маршруты и middleware
	r := mux.NewRouter()
	r.Use(externalHttp.LoggingMiddleware(log))
	r.Use(metrics.Middleware)
	h := externalHttp.NewHandler(services, log, map[string]externalHttp.ReadinessCheck{
		"postgres": db.PingContext,
		"redis":    cacheClient.Ping,
		"nats": func(context.Context) error {
			if !nc.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		},
	})
	h.RegisterRoutes(r)
	externalHttp.RegisterMetricsRoute(r, reg)

	// запускаем HTTP сервер с поддержкой graceful shutdown
	srvHttp := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting server")
		if err := srvHttp.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srvHttp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := cacheClient.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close Redis client")
	}
	// дренируем NATS, чтобы не потерять уже опубликованные события
	if err := nc.Drain(); err != nil {
		log.Error().Err(err).Msg("failed to drain NATS connection")
	}
	log.Info().Msg("server exited properly")
}
