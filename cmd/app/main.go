package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"marketplace/cmd"
	httpin "marketplace/internal/adapters/in/http"
	"marketplace/internal/adapters/out/cache"
	"marketplace/internal/adapters/out/kafka"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/core/ports"
	"marketplace/internal/jobs"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configs := getConfigs()

	logger, logCloser := cmd.NewLogger(configs)
	defer logCloser.Close()

	gormDB := mustOpenDB(configs)
	if err := postgres.Migrate(gormDB); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	publisher, closePublisher := mustCreatePublisher(configs, registry, logger)
	defer closePublisher()

	app := cmd.NewCompositionRoot(configs, gormDB, publisher, logger)

	settlementJob := jobs.NewSettlementJob(
		app.CreateSettlePaymentsCommandHandler(),
		configs.SettlementBatchSize,
		registry,
		logger,
	)
	jobManager := jobs.NewJobManager(settlementJob)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	idempotency, closeRedis := createIdempotencyStore(configs)
	defer closeRedis()

	server := httpin.NewServer(httpin.Handlers{
		Checkout:      app.CreateCheckoutCommandHandler(),
		Cart:          app.CreateCartCommandHandler(),
		OrderStatus:   app.CreateChangeOrderStatusCommandHandler(),
		Dispatch:      app.CreateDispatchCommandHandler(),
		Payment:       app.CreateRequestPaymentCommandHandler(),
		AgentPresence: app.CreateAgentPresenceCommandHandler(),
		Catalog:       app.CreateCatalogCommandHandler(),
		OrderList:     app.CreateListOrdersQueryHandler(),
		TrackOrder:    app.CreateTrackOrderQueryHandler(),
		CartQuery:     app.CreateGetCartQueryHandler(),
		CatalogQuery:  app.CreateCatalogQueryHandler(),
	})
	e, err := httpin.NewRouter(server, httpin.RouterConfig{
		JWTSecret:   []byte(configs.JWTSecret),
		Logger:      logger,
		Idempotency: idempotency,
		Registerer:  registry,
		Gatherer:    registry,
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	startWebServer(e, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	// .env is optional; the process environment wins.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	config, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return config
}

func mustOpenDB(configs cmd.Config) *gorm.DB {
	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gormDB
}

// mustCreatePublisher returns the Kafka publisher when KAFKA_HOST is set and a logging
// one otherwise. Both are counted.
func mustCreatePublisher(
	configs cmd.Config,
	reg prometheus.Registerer,
	logger *slog.Logger,
) (ports.OrderEventPublisher, func()) {
	var (
		next    ports.OrderEventPublisher
		closeFn = func() {}
	)

	if configs.KafkaHost == "" {
		next = kafka.NewLogPublisher(logger)
	} else {
		producer, err := kafka.NewSyncProducer(strings.Split(configs.KafkaHost, ","))
		if err != nil {
			log.Fatalf("failed to create kafka producer: %v", err)
		}
		publisher, err := kafka.NewOrderEventPublisher(producer, configs.KafkaOrderChangedTopic)
		if err != nil {
			closeProducer(producer)
			log.Fatalf("failed to create order event publisher: %v", err)
		}
		next = publisher
		closeFn = func() {
			if err := publisher.Close(); err != nil {
				log.Errorf("failed to close kafka producer: %v", err)
			}
		}
	}

	return kafka.NewInstrumentedPublisher(next, reg), closeFn
}

func closeProducer(p sarama.SyncProducer) {
	if err := p.Close(); err != nil {
		log.Errorf("failed to close kafka producer: %v", err)
	}
}

// createIdempotencyStore returns nil without REDIS_ADDR, which turns the
// Idempotency-Key header into a no-op.
func createIdempotencyStore(configs cmd.Config) (ports.IdempotencyStore, func()) {
	if configs.RedisAddr == "" {
		return nil, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     configs.RedisAddr,
		Password: configs.RedisPassword,
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	return cache.NewRedisIdempotencyStore(rdb, configs.IdempotencyTTL), func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis: %v", err)
		}
	}
}

func startWebServer(e *echo.Echo, port string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}
