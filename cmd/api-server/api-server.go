package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tunibet/db"
	"tunibet/db/migrations"
	"tunibet/internal/auth"
	"tunibet/internal/blobstore"
	"tunibet/internal/config"
	"tunibet/internal/events"
	"tunibet/internal/handlers"
	"tunibet/internal/jobs"
	"tunibet/internal/logger"
	"tunibet/internal/metrics"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Секрет для локального запуска без JWT_SECRET
const localJWTSecret = "local-dev-secret"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.PostgresConn)
	if err != nil {
		lg.Fatal("cannot connect to DB", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.RunMigrations {
		if err := migrations.Run(ctx, dbConn.DB); err != nil {
			lg.Fatal("migrations failed", zap.Error(err))
		}
		lg.Info("migrations applied")
	}

	store := db.NewStorage(dbConn)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// события: Kafka и Redis подключаются, только если заданы
	var sinks events.Fanout
	if cfg.KafkaBrokers != "" {
		placed := events.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicBetPlaced)
		accepted := events.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicBetAccepted)
		defer placed.Close()
		defer accepted.Close()
		sinks = append(sinks, events.NewKafkaPublisher(placed, accepted))
		lg.Info("kafka publisher enabled", zap.String("brokers", cfg.KafkaBrokers))
	}
	if cfg.RedisAddr != "" {
		rdb, err := events.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			lg.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		sinks = append(sinks, events.NewRedisBroadcaster(rdb, cfg.RedisNotificationChannel))
		lg.Info("redis notifications enabled", zap.String("addr", cfg.RedisAddr))
	}
	var publisher events.Publisher = events.Nop{}
	if len(sinks) > 0 {
		publisher = sinks
	}

	secret := cfg.JWTSecret
	if secret == "" {
		lg.Warn("JWT_SECRET is not set, using local development secret")
		secret = localJWTSecret
	}

	blobs, err := blobstore.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		lg.Fatal("blob store", zap.Error(err))
	}

	h := handlers.NewHandler(store, handlers.Deps{
		Auth:         auth.NewManager(secret, cfg.TokenTTL, cfg.BcryptCost),
		Blobs:        blobs,
		Publisher:    publisher,
		Metrics:      m,
		Logger:       lg,
		Verbose:      cfg.IsLocal(),
		StoreTimeout: cfg.StoreTimeout,
	})

	scheduler, err := jobs.Setup(cfg.ListingGaugeSchedule, store, m, lg, cfg.StoreTimeout)
	if err != nil {
		lg.Fatal("jobs", zap.Error(err))
	}
	scheduler.Start()

	metricsSrv := metrics.NewServer(cfg.MetricsAddress, reg, store.Ping)
	go func() {
		lg.Info("metrics/health listening", zap.String("addr", cfg.MetricsAddress))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("metrics server", zap.Error(err))
		}
	}()

	apiSrv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		lg.Info("starting server", zap.String("addr", cfg.ServerAddress))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("api server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		lg.Error("api shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		lg.Error("metrics shutdown", zap.Error(err))
	}
	<-scheduler.Stop().Done()
}
