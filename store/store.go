package store

import (
	"time"

	"clara/models"
)

// Store é a abstração injetada em cima do estado do backend (threads,
// event log, settings, catálogo e fila de respostas). O core de ingestão
// só fala com essa interface: memória para testes/dev, gorm para
// persistência durável. Nenhuma operação assume transação entre chaves.
type Store interface {
	// Threads. Exatamente uma conversa por (platform, externalUserID);
	// a listagem vem ordenada da mais recentemente ativa para a mais antiga.
	FindConversation(platform, externalUserID string) (*models.Conversation, error)
	GetConversation(id string) (*models.Conversation, error)
	CreateConversation(conv *models.Conversation) error
	UpdateConversation(conv *models.Conversation) error
	ListConversations() ([]models.Conversation, error)

	// AppendMessage anexa de forma idempotente (mensagem com id já presente
	// não é re-anexada; retorna false). Atualiza preview/last_message_at e
	// move a conversa para a frente.
	AppendMessage(conversationID string, msg models.Message) (bool, error)
	SetMessageDelivery(conversationID, messageID, status string) error
	SetAIPaused(conversationID string, paused bool) error

	// Event log: ring buffer limitado, mais recente primeiro.
	AppendLog(entry models.LogEntry) error
	ListLogs() ([]models.LogEntry, error)

	// Settings de runtime (uma linha só).
	GetSettings() (models.Settings, bool, error)
	PutSettings(s models.Settings) error

	// Catálogo de produtos (contexto do prompt da IA).
	ListProducts() ([]models.Product, error)
	GetProduct(id int64) (*models.Product, error)
	SaveProduct(p *models.Product) error
	DeleteProduct(id int64) error

	// Fila de respostas automáticas (drenada pelo worker).
	EnqueueReply(job *models.ReplyJob) error
	DueReplies(now time.Time, limit int) ([]models.ReplyJob, error)
	ClaimReply(id int64) (bool, error)
	FinishReply(id int64, status, replyText string) error
	PurgeReplies(olderThan time.Time) (int64, error)
}

// LogSink adapts a Store into the event-log callback the HTTP clients
// expect. Erro de log nunca derruba o fluxo.
func LogSink(s Store) func(models.LogEntry) {
	return func(entry models.LogEntry) {
		_ = s.AppendLog(entry)
	}
}

// previewOf derives the thread preview from a message text.
func previewOf(text string) string {
	const max = 80
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}
