package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicore/booking-platform/cmd/mainconfig"
	"github.com/clinicore/booking-platform/internal/api/router"
	"github.com/clinicore/booking-platform/internal/appointments"
	"github.com/clinicore/booking-platform/internal/clinic"
	appconfig "github.com/clinicore/booking-platform/internal/config"
	"github.com/clinicore/booking-platform/internal/doctors"
	"github.com/clinicore/booking-platform/internal/notify"
	"github.com/clinicore/booking-platform/internal/observability/metrics"
	"github.com/clinicore/booking-platform/internal/patients"
	"github.com/clinicore/booking-platform/internal/payments"
	"github.com/clinicore/booking-platform/internal/scheduling"
	"github.com/clinicore/booking-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage: postgres when configured, in-memory otherwise (dev/demo).
	var (
		ledger   appointments.Repository
		slots    scheduling.SlotIndex
		docsRepo doctors.Repository
		patsRepo patients.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		ledger = appointments.NewPostgresRepository(pool)
		slots = scheduling.NewPostgresSlotIndex(pool)
		docsRepo = doctors.NewPostgresRepository(pool)
		patsRepo = patients.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		ledger = appointments.NewInMemoryRepository()
		slots = scheduling.NewInMemorySlotIndex()
		docsRepo = doctors.NewInMemoryRepository()
		patsRepo = patients.NewInMemoryRepository()
	}

	// Metrics
	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Notification queue (memory for dev, SQS in production)
	var queue notify.Queue
	if cfg.UseMemoryQueue {
		queue = notify.NewMemoryQueue(0)
	} else if cfg.NotifyQueueURL != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue = notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
	}
	notifier := notify.NewService(queue, logger)

	// Coordinator and payment gate
	svc := appointments.NewService(ledger, slots, docsRepo, bookingMetrics, logger,
		appointments.WithNotifier(notifier))

	var provider payments.Provider
	var fakeProvider *payments.FakeProvider
	if cfg.AllowFakeOrders {
		fakeProvider = payments.NewFakeProvider(logger)
		provider = fakeProvider
		logger.Warn("fake payment orders enabled")
	} else {
		provider = payments.NewRazorpayClient(cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.PaymentBaseURL, logger)
	}
	gate := payments.NewGate(ledger, provider, cfg.PaymentCurrency, bookingMetrics, logger)

	// Dashboard cache
	var cache *clinic.SummaryCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		cache = clinic.NewSummaryCache(redisClient, cfg.DashboardCacheTTL, logger)
	}
	dashboard := clinic.NewDashboard(ledger, docsRepo, patsRepo, cache, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		DoctorsHandler:      doctors.NewHandler(docsRepo, slots, logger),
		AppointmentsHandler: appointments.NewHandler(svc, logger),
		PaymentsHandler:     payments.NewHandler(gate, fakeProvider, logger),
		DashboardHandler:    clinic.NewHandler(dashboard, logger),
		AuthSecret:          cfg.AuthJWTSecret,
		AllowFakeOrders:     cfg.AllowFakeOrders,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	// When using the in-process queue the worker runs inside the API binary.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.UseMemoryQueue && queue != nil {
		sender := buildEmailSender(cfg, logger)
		worker := notify.NewWorker(queue, sender, patsRepo, docsRepo, logger,
			notify.WithWorkerCount(cfg.NotifyWorkerCount))
		worker.Start(workerCtx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, falling back to stub sender")
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err == nil {
			if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
				FromEmail: cfg.FromEmail,
				FromName:  cfg.FromName,
			}, logger); sender != nil {
				return sender
			}
		}
		logger.Warn("SES selected but not configured, falling back to stub sender")
	}
	return notify.NewStubEmailSender(logger)
}
