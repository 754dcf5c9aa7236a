package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/ClickHouse/clickhouse-go"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DIMSGN/inventory-app-sub000/internal/config"
	"github.com/DIMSGN/inventory-app-sub000/internal/consumer"
	"github.com/DIMSGN/inventory-app-sub000/internal/repository"
	"github.com/DIMSGN/inventory-app-sub000/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", false)
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logging.New(cfg.LogLevel, cfg.Pretty()).With().Str("component", "consumer").Logger()

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer nc.Close()

	// подключаемся к ClickHouse (база appdb создаётся SQL-скриптами)
	db, err := sql.Open("clickhouse", cfg.ClickhouseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to ClickHouse")
	}
	defer func() { _ = db.Close() }()

	driver, err := clickhouse.WithInstance(db, &clickhouse.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ClickHouse migrate driver")
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations/clickhouse", "clickhouse", driver)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ClickHouse migrate instance")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("failed to apply ClickHouse migrations")
	}

	repo := repository.NewClickhouseRepo(db, log)
	cons := consumer.NewConsumer(repo, cfg.BatchSize, log)

	// HTTP-сервер для healthz, readyz и метрик
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "inventory_consumer_pending_events",
		Help: "Events buffered and not yet written to ClickHouse.",
	}, func() float64 { return float64(cons.Pending()) }))

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil || !nc.IsConnected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")

	healthSrv := &http.Server{Addr: ":" + cfg.ConsumerPort, Handler: r}
	go func() {
		log.Info().Str("port", cfg.ConsumerPort).Msg("starting health server")
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server failed")
		}
	}()

	runCtx, stopRun := context.WithCancel(context.Background())
	go cons.Run(runCtx, cfg.FlushInterval)

	sub, err := nc.Subscribe(cfg.NATSSubject, func(msg *nats.Msg) {
		if err := cons.HandleMessage(context.Background(), msg.Data); err != nil {
			log.Error().Err(err).Msg("failed to handle message")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Str("subject", cfg.NATSSubject).Msg("failed to subscribe")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down consumer")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := healthSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("health server shutdown failed")
	}

	// отписываемся, останавливаем таймер и сбрасываем оставшиеся события
	if err := sub.Unsubscribe(); err != nil {
		log.Error().Err(err).Msg("failed to unsubscribe")
	}
	stopRun()
	if err := cons.Flush(ctx); err != nil {
		log.Error().Err(err).Msg("failed to flush consumer events")
	}
}
