package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"jpt/internal/api"
	"jpt/internal/application/factories/infrastructure"
	"jpt/internal/config"
	"jpt/internal/consumer"
	"jpt/internal/logging"
	"jpt/internal/usecase"
)

// Service 2 serves the HTTP surface and consumes the topic.
func main() {
	logger := logging.New(os.Stdout, os.Getenv("LOG_LEVEL"))

	cfg, err := config.New(config.Service2)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stdout, cfg.Log.Level).With("service", cfg.App.Name)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	// UseCases
	getHealthUC := usecase.NewGetHealth(cfg)
	generateDataUC := usecase.NewGenerateData(cfg)
	callPeerUC := usecase.NewCallPeer(cfg, infraFactory.PeerClient())

	handlers := api.NewHandlers(getHealthUC, generateDataUC, callPeerUC, nil, cfg.HTTP.StrictStatus)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           api.NewRouter(handlers, nil, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Kafka Subscriber
	kafkaConsumer := infraFactory.KafkaConsumer()
	subscriber := consumer.NewSubscriber(kafkaConsumer, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Subscriber started",
			"group_id", kafkaConsumer.GroupID(),
			"topic", kafkaConsumer.Topic(),
			"brokers", cfg.Kafka.Brokers,
		)
		if err := subscriber.Run(ctx); err != nil {
			logger.Error("subscriber stopped with error", "error", err)
		}
	}()

	go func() {
		logger.Info("Server starting", "port", cfg.HTTP.Port, "peer", cfg.Peer.URL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("Server exiting")
}
