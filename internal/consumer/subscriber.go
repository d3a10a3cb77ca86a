package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jpt/internal/domain/event"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

var (
	messagesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscriber_messages_consumed_total",
		Help: "The total number of messages processed and committed",
	})
	consumeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscriber_message_errors_total",
		Help: "The total number of messages left uncommitted after a processing error",
	})
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Subscriber logs every envelope on the topic and commits it once processed.
// Failed messages are not committed; redelivery is up to the consumer group.
type Subscriber struct {
	reader     MessageReader
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewSubscriber(reader MessageReader, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		reader:     reader,
		logger:     logger,
		retryDelay: 1 * time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("Subscriber stopping")
				return nil
			}
			s.logger.Error("failed to fetch message", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.retryDelay):
			}
			continue
		}

		if err := s.Handle(msg); err != nil {
			consumeErrors.Inc()
			s.logger.Error("Error processing message",
				"error", err,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			continue
		}

		if err := s.reader.CommitMessages(ctx, msg); err != nil {
			s.logger.Error("failed to commit kafka message", "error", err, "offset", msg.Offset)
			continue
		}
		messagesConsumed.Inc()
	}
}

// Handle decodes one envelope and logs its fields.
func (s *Subscriber) Handle(msg kafka.Message) error {
	var data map[string]any
	if err := json.Unmarshal(msg.Value, &data); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}
	if data == nil {
		return errors.New("unmarshal envelope: not an object")
	}

	s.logger.Info("Message received",
		event.FieldFrom, data[event.FieldFrom],
		event.FieldTimestamp, data[event.FieldTimestamp],
		event.FieldReceivedData, data[event.FieldReceivedData],
		"partition", msg.Partition,
		"offset", msg.Offset,
	)
	return nil
}
