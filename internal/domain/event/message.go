package event

import "time"

// Envelope is the message published to Kafka.
// ReceivedData is the publish request body, untouched.
type Envelope struct {
	From         string `json:"from"`
	Timestamp    string `json:"timestamp"`
	ReceivedData any    `json:"receivedData"`
}

func NewEnvelope(from string, data any, now time.Time) Envelope {
	return Envelope{
		From:         from,
		Timestamp:    now.Format(time.RFC3339Nano),
		ReceivedData: data,
	}
}

// Wire field names of Envelope.
const (
	FieldFrom         = "from"
	FieldTimestamp    = "timestamp"
	FieldReceivedData = "receivedData"
)
