package main

import (
	"context"
	"errors"
	"os"

	"timebudget/internal/amqp"
	"timebudget/internal/auth"
	"timebudget/internal/cli"
	"timebudget/internal/config"
	applog "timebudget/internal/log"
	"timebudget/internal/services"
	"timebudget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting timebudget-worker", "queue", cfg.AMQPQueue, "exchange", cfg.AMQPExchange)

	store := cli.InitBackend(context.Background(), logger.Logger, cfg)
	defer store.Close()

	// The worker only recomputes projections, so it never publishes.
	svc := services.New(services.Deps{
		Store:  store.Store,
		Hasher: auth.NewBcrypt(cfg.BcryptCost),
		Tokens: auth.NewTokens(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}),
	})
	reviewWorker := worker.NewReviewWorker(svc.Reviews)

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.LogError(context.Background(), "Failed to initialize AMQP client", err, applog.OpStartup, applog.ErrorTypeNetwork)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := consumer.Close(); err != nil {
			logger.Error("Failed to close AMQP client", "error", err)
		}
	})

	go func() {
		err := consumer.ConsumeEvents(ctx, reviewWorker.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption stopped", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
