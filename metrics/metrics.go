package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// WebhookEvents conta eventos de mensagem aceitos pelo ingestor.
	WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clara_webhook_events_total",
		Help: "Webhook message events processed, by platform.",
	}, []string{"platform"})

	// DuplicateEvents conta eventos descartados pela janela de dedup.
	DuplicateEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clara_webhook_duplicates_total",
		Help: "Webhook events dropped as duplicates.",
	})

	// Replies conta respostas automáticas por desfecho (sent, fallback, failed, skipped).
	Replies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clara_replies_total",
		Help: "Automatic replies, by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(WebhookEvents, DuplicateEvents, Replies)
}
