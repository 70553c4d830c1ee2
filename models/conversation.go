package models

import (
	"strings"
	"time"
)

/************************************************
/**** MARK: PLATFORMS ****/
/************************************************/
const PLATFORM_INSTAGRAM = "instagram"
const PLATFORM_WHATSAPP = "whatsapp"

func ValidPlatform(p string) bool {
	return p == PLATFORM_INSTAGRAM || p == PLATFORM_WHATSAPP
}

// Conversation representa a thread de mensagens de um contato externo.
// Existe exatamente uma por (platform, external_user_id); o ID é derivado
// desse par, então find-or-create nunca duplica thread.
type Conversation struct {
	ID                 string     `gorm:"primary_key" json:"id"`
	Platform           string     `gorm:"not null;index" json:"platform"`
	ExternalUserID     string     `gorm:"not null;index" json:"external_user_id"`
	DisplayName        string     `json:"display_name"`
	AvatarURL          string     `json:"avatar_url"`
	AiPaused           bool       `gorm:"not null;default:false" json:"ai_paused"`
	LastMessagePreview string     `json:"last_message_preview"`
	LastMessageAt      *time.Time `gorm:"index" json:"last_message_at"`
	Messages           []Message  `gorm:"foreignkey:ConversationID" json:"messages"`
	CreatedAt          *time.Time `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

// ConversationID derives the stable thread id for a sender.
func ConversationID(platform, externalUserID string) string {
	return platform + ":" + externalUserID
}

// PlaceholderName gera um nome determinístico quando o profile fetch
// falha ou não há credencial configurada.
func PlaceholderName(externalUserID string) string {
	return "Contato " + idTail(externalUserID, 6)
}

// PlaceholderAvatar returns a deterministic avatar URL for the sender.
func PlaceholderAvatar(externalUserID string) string {
	return "https://ui-avatars.com/api/?name=" + idTail(externalUserID, 6)
}

func idTail(id string, n int) string {
	id = strings.TrimSpace(id)
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}
