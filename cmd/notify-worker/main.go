package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/booking-platform/cmd/mainconfig"
	appconfig "github.com/clinicore/booking-platform/internal/config"
	"github.com/clinicore/booking-platform/internal/doctors"
	"github.com/clinicore/booking-platform/internal/notify"
	"github.com/clinicore/booking-platform/internal/patients"
	"github.com/clinicore/booking-platform/pkg/logging"
)

// Standalone consumer for the booking notification queue. The API binary runs
// the worker in-process when USE_MEMORY_QUEUE is set; this binary exists for
// the SQS deployment where delivery scales separately from the API.
func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting notify worker", "env", cfg.Env)

	if cfg.NotifyQueueURL == "" {
		logger.Error("NOTIFY_QUEUE_URL is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	queue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger)
	case "ses":
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger)
	}
	if sender == nil {
		logger.Warn("no email provider configured, using stub sender")
		sender = notify.NewStubEmailSender(logger)
	}

	worker := notify.NewWorker(
		queue,
		sender,
		patients.NewPostgresRepository(pool),
		doctors.NewPostgresRepository(pool),
		logger,
		notify.WithWorkerCount(cfg.NotifyWorkerCount),
	)
	worker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down notify worker...")
	cancel()
	worker.Wait()
	logger.Info("notify worker stopped")
}
