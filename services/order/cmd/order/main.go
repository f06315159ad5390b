package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/marketplace/pkg/authclient"
	pkgdb "github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	loggingmw "github.com/Skotchmaster/marketplace/pkg/middleware/logging"
	"github.com/Skotchmaster/marketplace/pkg/mykafka"

	ordercfg "github.com/Skotchmaster/marketplace/services/order/internal/config"
	"github.com/Skotchmaster/marketplace/services/order/internal/events"
	"github.com/Skotchmaster/marketplace/services/order/internal/httpserver"
	"github.com/Skotchmaster/marketplace/services/order/internal/idempotency"
	"github.com/Skotchmaster/marketplace/services/order/internal/payment"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
)

func main() {
	if err := godotenv.Load("services/order/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := ordercfg.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if cfg.RunMigrations {
		if err := pkgdb.Migrate(db, repo.Migrations, repo.MigrationsDir); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	emitter := &events.Emitter{Timeout: 5 * time.Second}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers, []string{events.Topic})
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		emitter.Publisher = producer
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var idem *idempotency.Store
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis url: %v", err)
		}
		rdb = redis.NewClient(opts)
		idem = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	} else {
		logger.Warn("idempotency_disabled", "reason", "REDIS_URL is empty")
	}

	r := &repo.GormRepo{DB: db}
	gateway := payment.NewClient(cfg.PaymentURL, cfg.PaymentAPIKey, cfg.PaymentTimeout)

	checkoutSvc := &service.CheckoutService{
		Repo:       r,
		Gateway:    gateway,
		Events:     emitter,
		Currency:   cfg.Currency,
		SuccessURL: cfg.SuccessURL,
		CancelURL:  cfg.CancelURL,
	}
	orderSvc := &service.OrderService{Repo: r, Events: emitter}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: checkoutSvc, Idempotency: idem},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orderSvc},
		WebhookHandler:  &httpserver.WebhookHTTP{Svc: orderSvc, Secret: cfg.PaymentWebhookSecret},
		JWTSecret:       cfg.JWTAccessSecret,
		AuthClient:      authclient.NewClient(cfg.AuthHTTPURL),
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("order listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("order stopped")
}
