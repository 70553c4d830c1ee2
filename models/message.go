package models

import "time"

/************************************************
/**** MARK: MESSAGE DIRECTION ****/
/************************************************/
const DIRECTION_INCOMING = "incoming"
const DIRECTION_OUTGOING = "outgoing"

/************************************************
/**** MARK: DELIVERY STATUS (outgoing only) ****/
/************************************************/
const DELIVERY_SENT = "sent"
const DELIVERY_FAILED = "failed"

// Message é uma mensagem dentro de uma conversa. O ID vem do mid do
// provedor quando existe; senão é um ULID gerado. Append é idempotente
// por ID (retries do webhook não duplicam mensagem).
type Message struct {
	ID             string     `gorm:"primary_key" json:"id"`
	ConversationID string     `gorm:"not null;index" json:"conversation_id"`
	Direction      string     `gorm:"not null" json:"direction"`
	Text           string     `gorm:"type:text" json:"text"`
	DeliveryStatus string     `gorm:"default:''" json:"delivery_status,omitempty"`
	CreatedAt      *time.Time `gorm:"index" json:"created_at"`
}

// ClampMessageTime keeps CreatedAt monotonically non-decreasing within a
// conversation (ties permitted). Provider timestamps can arrive skewed.
func ClampMessageTime(lastMessageAt *time.Time, msgAt time.Time) time.Time {
	if lastMessageAt != nil && msgAt.Before(*lastMessageAt) {
		return *lastMessageAt
	}
	return msgAt
}
