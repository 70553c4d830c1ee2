package models

import "time"

// Settings guarda a configuração de runtime (tokens, versão da Graph API,
// auto-reply). Uma linha só (ID=1). Semeada pelo ambiente no boot e
// mutável via /api/settings.
type Settings struct {
	ID           int64      `gorm:"primary_key" json:"-"`
	VerifyToken  string     `json:"verify_token"`
	AccessToken  string     `json:"access_token"`
	OpenAIKey    string     `gorm:"column:openai_key" json:"openai_key"`
	OpenAIModel  string     `gorm:"column:openai_model" json:"openai_model"`
	GraphVersion string     `gorm:"not null;default:'v20.0'" json:"graph_version"`
	AutoReply    bool       `gorm:"not null;default:true" json:"auto_reply"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// Normalize preenche defaults (mesma ideia dos defaults do config.Get).
func (s *Settings) Normalize() {
	if s.GraphVersion == "" {
		s.GraphVersion = "v20.0"
	}
	if s.OpenAIModel == "" {
		s.OpenAIModel = "gpt-4.1-mini"
	}
}
