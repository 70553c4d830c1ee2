package ingest

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"clara/models"
)

// texto placeholder para eventos sem corpo de texto (mídia, sticker etc)
const attachmentPlaceholder = "[Anexo]"

// InboundMessage é um evento de mensagem já extraído do envelope.
type InboundMessage struct {
	Platform    string
	SenderID    string
	MessageID   string
	Text        string
	ProfileName string // nome vindo do bloco contacts (WhatsApp), quando houver
	Timestamp   time.Time
}

// DedupKey identifica o evento na janela de deduplicação.
func (m InboundMessage) DedupKey() string {
	if m.MessageID != "" {
		return m.MessageID
	}
	return m.Platform + ":" + m.SenderID + ":" + strconv.FormatInt(m.Timestamp.UnixMilli(), 10)
}

// Envelope mínimo dos webhooks da Meta. Cobre os dois formatos:
// entry[].messaging[] (Instagram/Messenger) e
// entry[].changes[].value.messages[] (WhatsApp Cloud API).
type webhookEnvelope struct {
	Object string `json:"object"`
	Entry  []struct {
		ID        string `json:"id"`
		Time      int64  `json:"time"`
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Timestamp int64 `json:"timestamp"`
			Message   *struct {
				Mid         string `json:"mid"`
				Text        string `json:"text"`
				IsEcho      bool   `json:"is_echo"`
				Attachments []struct {
					Type string `json:"type"`
				} `json:"attachments"`
			} `json:"message"`
		} `json:"messaging"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseEnvelope extrai os eventos de mensagem de um POST de webhook.
// Erro só quando o corpo não é JSON válido; envelope vazio é ok (a Meta
// manda webhooks de status que não carregam mensagem).
// Os eventos voltam ordenados do mais antigo para o mais novo,
// independente da ordem do payload.
func ParseEnvelope(platform string, raw []byte) ([]InboundMessage, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	if p := platformFromObject(env.Object); p != "" {
		platform = p
	}

	var out []InboundMessage

	for _, entry := range env.Entry {
		// formato Instagram/Messenger
		for _, ev := range entry.Messaging {
			if ev.Message == nil || ev.Message.IsEcho {
				continue
			}
			senderID := strings.TrimSpace(ev.Sender.ID)
			if senderID == "" {
				continue
			}
			text := strings.TrimSpace(ev.Message.Text)
			if text == "" {
				text = attachmentPlaceholder
			}
			out = append(out, InboundMessage{
				Platform:  platform,
				SenderID:  senderID,
				MessageID: strings.TrimSpace(ev.Message.Mid),
				Text:      text,
				Timestamp: msEpoch(ev.Timestamp, entry.Time),
			})
		}

		// formato WhatsApp Cloud API
		for _, change := range entry.Changes {
			if strings.TrimSpace(change.Field) != "messages" {
				continue
			}
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = strings.TrimSpace(c.Profile.Name)
			}
			for _, m := range change.Value.Messages {
				senderID := strings.TrimSpace(m.From)
				if senderID == "" {
					continue
				}
				text := attachmentPlaceholder
				if strings.ToLower(strings.TrimSpace(m.Type)) == "text" && m.Text != nil {
					if body := strings.TrimSpace(m.Text.Body); body != "" {
						text = body
					}
				}
				out = append(out, InboundMessage{
					Platform:    models.PLATFORM_WHATSAPP,
					SenderID:    senderID,
					MessageID:   strings.TrimSpace(m.ID),
					Text:        text,
					ProfileName: names[senderID],
					Timestamp:   secEpoch(m.Timestamp),
				})
			}
		}
	}

	// processa cronologicamente mesmo quando o payload vem do mais novo
	// para o mais antigo
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out, nil
}

func platformFromObject(object string) string {
	switch strings.ToLower(strings.TrimSpace(object)) {
	case "instagram", "page":
		return models.PLATFORM_INSTAGRAM
	case "whatsapp", "whatsapp_business_account":
		return models.PLATFORM_WHATSAPP
	}
	return ""
}

// Instagram manda timestamp em milissegundos; entry.time é o fallback.
func msEpoch(ts, fallback int64) time.Time {
	if ts == 0 {
		ts = fallback
	}
	if ts == 0 {
		return time.Now()
	}
	return time.UnixMilli(ts)
}

// WhatsApp manda timestamp em segundos, como string.
func secEpoch(ts string) time.Time {
	n, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil || n == 0 {
		return time.Now()
	}
	return time.Unix(n, 0)
}
