package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	peerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "peer_calls_total",
		Help: "Calls to the peer /data endpoint by outcome",
	}, []string{"outcome"})
	messagesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messages_published_total",
		Help: "The total number of envelopes written to Kafka",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "message_publish_errors_total",
		Help: "The total number of failed publish attempts",
	})
)
