package workers

import (
	"context"
	"log"
	"time"

	"clara/metrics"
	"clara/models"
	"clara/store"
	"clara/tools"
)

// resposta fixa quando a IA falha: o contato sempre recebe alguma coisa
const FallbackReply = "Desculpe, tive um problema ao gerar a resposta."

// quantas mensagens recentes entram no contexto do modelo
const contextWindowSize = 5

// ReplyProcessor drena a fila de respostas automáticas: claim otimista
// (pending -> processing), gera a resposta com a IA e envia pela Graph
// API. Clients são construídos por job, porque as settings mudam em
// runtime.
type ReplyProcessor struct {
	Store    store.Store
	Graph    func() tools.GraphClient
	OpenAI   func() tools.OpenAIClient
	Interval time.Duration
}

// Start inicia o loop do worker. O retorno para o loop (para testes e
// shutdown).
func (p *ReplyProcessor) Start() func() {
	interval := p.Interval
	if interval <= 0 {
		interval = 1 * time.Second
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.ProcessDue(time.Now())
			}
		}
	}()

	return func() { close(done) }
}

// ProcessDue processa os jobs vencidos. Síncrono, pra ser chamável
// direto nos testes.
func (p *ReplyProcessor) ProcessDue(now time.Time) {
	jobs, err := p.Store.DueReplies(now, 50)
	if err != nil {
		log.Printf("reply worker: query error: %v", err)
		return
	}

	for _, job := range jobs {
		// lock otimista: só processa se conseguir mudar status
		ok, err := p.Store.ClaimReply(job.ID)
		if err != nil || !ok {
			continue
		}
		p.handle(job)
	}
}

func (p *ReplyProcessor) handle(job models.ReplyJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	conv, err := p.Store.GetConversation(job.ConversationID)
	if err != nil || conv == nil {
		log.Printf("reply worker: conversa %s não encontrada", job.ConversationID)
		_ = p.Store.FinishReply(job.ID, models.REPLY_STATUS_FAILED, "")
		return
	}

	// re-checa a pausa: um humano pode ter assumido a conversa depois do
	// enqueue
	if conv.AiPaused {
		metrics.Replies.WithLabelValues("skipped").Inc()
		_ = p.Store.FinishReply(job.ID, models.REPLY_STATUS_SKIPPED, "")
		return
	}

	graph := p.Graph()

	// best-effort, falha já fica no event log
	if err := graph.SendTypingIndicator(ctx, conv.ExternalUserID); err != nil {
		log.Printf("reply worker: typing indicator falhou: %v", err)
	}

	products, err := p.Store.ListProducts()
	if err != nil {
		log.Printf("reply worker: load catálogo falhou: %v", err)
	}
	instructions := tools.BuildSystemPrompt(products)
	turns := contextWindow(conv.Messages, contextWindowSize)

	outcome := "sent"
	reply, err := p.OpenAI().GenerateReply(ctx, instructions, turns)
	if err != nil {
		log.Printf("reply worker: openai error: %v", err)
		reply = FallbackReply
		outcome = "fallback"
	}

	delivery := models.DELIVERY_SENT
	status := models.REPLY_STATUS_DONE
	if err := graph.SendText(ctx, conv.ExternalUserID, reply); err != nil {
		log.Printf("reply worker: send falhou para %s: %v", conv.ID, err)
		delivery = models.DELIVERY_FAILED
		status = models.REPLY_STATUS_FAILED
		outcome = "failed"
	}

	// a resposta entra na conversa mesmo quando o envio falhou, marcada
	// com delivery_status=failed
	now := time.Now()
	msg := models.Message{
		ID:             models.NewMessageID(),
		Direction:      models.DIRECTION_OUTGOING,
		Text:           reply,
		DeliveryStatus: delivery,
		CreatedAt:      &now,
	}
	if _, err := p.Store.AppendMessage(conv.ID, msg); err != nil {
		log.Printf("reply worker: append da resposta falhou: %v", err)
	}

	metrics.Replies.WithLabelValues(outcome).Inc()
	_ = p.Store.FinishReply(job.ID, status, reply)
}

// contextWindow mapeia as últimas n mensagens para o formato da IA:
// incoming -> user, outgoing -> assistant.
func contextWindow(msgs []models.Message, n int) []tools.ChatTurn {
	start := len(msgs) - n
	if start < 0 {
		start = 0
	}

	turns := make([]tools.ChatTurn, 0, n)
	for _, m := range msgs[start:] {
		role := "user"
		if m.Direction == models.DIRECTION_OUTGOING {
			role = "assistant"
		}
		turns = append(turns, tools.ChatTurn{Role: role, Content: m.Text})
	}
	return turns
}
