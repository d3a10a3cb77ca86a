package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"jpt/internal/domain/event"
)

const (
	StatusSent  = "Message sent to Kafka successfully"
	StatusError = "Error"
)

type Publisher interface {
	SendMessage(ctx context.Context, key, value []byte) error
}

type PublishResult struct {
	Status   string          `json:"status"`
	SentData *event.Envelope `json:"sentData,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type ProduceMessage struct {
	sender    string
	publisher Publisher
	logger    *slog.Logger
}

func NewProduceMessage(sender string, publisher Publisher, logger *slog.Logger) *ProduceMessage {
	return &ProduceMessage{
		sender:    sender,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute wraps data in an envelope and writes it to the topic.
// On failure the returned result already carries the "Error" status.
func (uc *ProduceMessage) Execute(ctx context.Context, data any) (PublishResult, error) {
	envelope := event.NewEnvelope(uc.sender, data, time.Now())

	value, err := json.Marshal(envelope)
	if err != nil {
		publishErrors.Inc()
		err = fmt.Errorf("marshal envelope: %w", err)
		return PublishResult{Status: StatusError, Error: err.Error()}, err
	}

	if err := uc.publisher.SendMessage(ctx, nil, value); err != nil {
		publishErrors.Inc()
		uc.logger.Error("failed to publish message", "error", err)
		return PublishResult{Status: StatusError, Error: err.Error()}, err
	}

	messagesPublished.Inc()
	uc.logger.Info("Message published", "from", envelope.From, "timestamp", envelope.Timestamp)

	return PublishResult{Status: StatusSent, SentData: &envelope}, nil
}
