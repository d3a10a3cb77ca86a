package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jpt/internal/api"
	"jpt/internal/application/factories/infrastructure"
	"jpt/internal/config"
	"jpt/internal/logging"
	"jpt/internal/usecase"
)

// Service 1 serves the HTTP surface and publishes to the topic.
func main() {
	logger := logging.New(os.Stdout, os.Getenv("LOG_LEVEL"))

	cfg, err := config.New(config.Service1)
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

	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	kafkaProd := infraFactory.KafkaProducer()

	// UseCases
	getHealthUC := usecase.NewGetHealth(cfg)
	generateDataUC := usecase.NewGenerateData(cfg)
	callPeerUC := usecase.NewCallPeer(cfg, infraFactory.PeerClient())
	produceMessageUC := usecase.NewProduceMessage(cfg.Identity.Sender, kafkaProd, logger)

	handlers := api.NewHandlers(getHealthUC, generateDataUC, callPeerUC, produceMessageUC, cfg.HTTP.StrictStatus)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           api.NewRouter(handlers, redisClient, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			"port", cfg.HTTP.Port,
			"peer", cfg.Peer.URL,
			"topic", kafkaProd.GetTopic(),
			"brokers", cfg.Kafka.Brokers,
		)
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

	logger.Info("Server exiting")
}
