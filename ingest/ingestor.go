package ingest

import (
	"context"
	"log"

	"clara/metrics"
	"clara/models"
)

// Ingestor é o core de ingestão: parse do envelope, dedup e despacho de
// cada evento para o reconciler. Os handlers HTTP são só shims em volta
// disso.
type Ingestor struct {
	Reconciler *Reconciler
	Dedup      *DedupWindow

	// AutoReply é chamado para cada mensagem recebida de fato anexada.
	// O wiring decide se enfileira resposta automática (IA ligada, thread
	// não pausada). Opcional.
	AutoReply func(conv *models.Conversation, msg models.Message)
}

// Process faz parse + despacho. Erro apenas quando o corpo não é JSON.
func (ing *Ingestor) Process(ctx context.Context, platform string, raw []byte) (int, error) {
	msgs, err := ParseEnvelope(platform, raw)
	if err != nil {
		return 0, err
	}
	return ing.Dispatch(ctx, msgs), nil
}

// Dispatch aplica cada evento em ordem de chegada (já cronológica, via
// ParseEnvelope). Falha de um evento não derruba os demais — o webhook
// já foi respondido com sucesso.
func (ing *Ingestor) Dispatch(ctx context.Context, msgs []InboundMessage) int {
	processed := 0
	for _, m := range msgs {
		key := m.DedupKey()
		if ing.Dedup != nil && ing.Dedup.Seen(key) {
			metrics.DuplicateEvents.Inc()
			continue
		}

		conv, msg, appended, err := ing.Reconciler.Reconcile(ctx, m)
		if err != nil {
			// não marca na janela: o retry do provedor ainda vale
			log.Printf("ingest: reconcile falhou (%s/%s): %v", m.Platform, m.SenderID, err)
			continue
		}

		if ing.Dedup != nil {
			ing.Dedup.Mark(key)
		}
		if !appended {
			metrics.DuplicateEvents.Inc()
			continue
		}
		metrics.WebhookEvents.WithLabelValues(m.Platform).Inc()
		processed++

		if ing.AutoReply != nil {
			ing.AutoReply(conv, msg)
		}
	}
	return processed
}
