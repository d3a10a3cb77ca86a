package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"jpt/internal/config"
	"jpt/internal/infrastructure/kafka"
	"jpt/internal/infrastructure/peer"
	"jpt/internal/infrastructure/redis"

	go_redis "github.com/redis/go-redis/v9"
)

// Factory builds each client once, on first use, and closes whatever it built.
type Factory struct {
	cfg      *config.Config
	producer *kafka.Producer
	consumer *kafka.Consumer
	redisCli *go_redis.Client
	peerCli  *peer.Client
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		cfg: cfg,
	}
}

func (f *Factory) kafkaConfig() kafka.Config {
	return kafka.Config{
		Brokers:     f.cfg.Kafka.Brokers,
		Topic:       f.cfg.Kafka.Topic,
		GroupID:     f.cfg.Kafka.GroupID,
		StartOffset: f.cfg.Kafka.StartOffset,
	}
}

func (f *Factory) KafkaProducer() *kafka.Producer {
	if f.producer == nil {
		f.producer = kafka.NewProducer(f.kafkaConfig())
	}
	return f.producer
}

func (f *Factory) KafkaConsumer() *kafka.Consumer {
	if f.consumer == nil {
		f.consumer = kafka.NewConsumer(f.kafkaConfig())
	}
	return f.consumer
}

func (f *Factory) PeerClient() *peer.Client {
	if f.peerCli == nil {
		f.peerCli = peer.NewClient(nil, f.cfg.Peer.Timeout)
	}
	return f.peerCli
}

// Redis returns nil without error when no address is configured.
func (f *Factory) Redis(ctx context.Context) (*go_redis.Client, error) {
	if f.redisCli != nil || f.cfg.Redis.Addr == "" {
		return f.redisCli, nil
	}

	client, err := redis.NewClient(ctx, redis.Config{
		Addr:     f.cfg.Redis.Addr,
		Password: f.cfg.Redis.Password,
		DB:       f.cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	f.redisCli = client
	return client, nil
}

func (f *Factory) Close() error {
	var errs []error
	if f.producer != nil {
		errs = append(errs, f.producer.Close())
	}
	if f.consumer != nil {
		errs = append(errs, f.consumer.Close())
	}
	if f.redisCli != nil {
		errs = append(errs, f.redisCli.Close())
	}
	return errors.Join(errs...)
}
