package models

import "time"

/************************************************
/**** MARK: LOG DIRECTION ****/
/************************************************/
const LOG_INBOUND_WEBHOOK = "inbound-webhook"
const LOG_OUTBOUND_API = "outbound-api"

// LogEntry é um snapshot de uma interação HTTP (webhook recebido ou
// chamada externa). Imutável após inserção; o Payload já chega redigido
// (tokens trocados por "<redacted>").
type LogEntry struct {
	ID        string     `gorm:"primary_key" json:"id"`
	Timestamp *time.Time `gorm:"index" json:"timestamp"`
	Direction string     `gorm:"not null;index" json:"direction"`
	Method    string     `json:"method"`
	URL       string     `json:"url"`
	Status    int        `json:"status"`
	Outcome   string     `json:"outcome"`
	Payload   string     `gorm:"type:text" json:"payload"`
}
