package models

import "time"

/************************************************
/**** MARK: REPLY JOB STATUS ****/
/************************************************/
const REPLY_STATUS_PENDING = "pending"
const REPLY_STATUS_PROCESSING = "processing"
const REPLY_STATUS_DONE = "done"
const REPLY_STATUS_FAILED = "failed"
const REPLY_STATUS_SKIPPED = "skipped"

// ReplyJob representa uma resposta automática pendente para uma mensagem
// recebida. Entra como "pending" e é drenada pelo worker de respostas,
// que faz claim otimista (pending -> processing) antes de processar.
type ReplyJob struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ConversationID string     `gorm:"not null;index" json:"conversation_id"`
	MessageID      string     `gorm:"default:''" json:"message_id"`
	Status         string     `gorm:"not null;default:'pending';index" json:"status"`
	ScheduledAt    *time.Time `gorm:"index" json:"scheduled_at"`
	ProcessedAt    *time.Time `json:"processed_at"`
	ReplyText      string     `gorm:"type:text" json:"reply_text"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}
