package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clara/models"
)

// ChatTurn é um item do histórico enviado ao modelo.
type ChatTurn struct {
	Role    string `json:"role"` // "user" ou "assistant"
	Content string `json:"content"`
}

// OpenAIClient chama a Responses API com instructions + histórico.
type OpenAIClient struct {
	APIKey     string
	Model      string
	BaseURL    string                // default https://api.openai.com; sobrescrito nos testes
	HTTPClient *http.Client          // default com timeout de 30s
	Log        func(models.LogEntry) // sink do event log, opcional
}

func (o OpenAIClient) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return "https://api.openai.com"
}

func (o OpenAIClient) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (o OpenAIClient) logEntry(url string, status int, outcome string, payload any) {
	if o.Log == nil {
		return
	}
	b, _ := json.Marshal(payload)
	o.Log(models.LogEntry{
		Direction: models.LOG_OUTBOUND_API,
		Method:    http.MethodPost,
		URL:       url,
		Status:    status,
		Outcome:   outcome,
		Payload:   RedactJSON(b),
	})
}

// GenerateReply envia o histórico role-tagged e devolve o texto do
// assistant. Erro aqui nunca chega ao usuário final: o worker troca por
// uma resposta fixa de fallback.
func (o OpenAIClient) GenerateReply(ctx context.Context, instructions string, turns []ChatTurn) (string, error) {
	if strings.TrimSpace(o.APIKey) == "" {
		return "", fmt.Errorf("openai api key não configurada")
	}

	model := o.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}

	input := make([]map[string]any, 0, len(turns))
	for _, t := range turns {
		input = append(input, map[string]any{
			"role":    t.Role,
			"content": t.Content,
		})
	}

	reqBody := map[string]any{
		"model":        model,
		"instructions": instructions,
		"input":        input,
	}

	b, _ := json.Marshal(reqBody)

	url := o.baseURL() + "/v1/responses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient().Do(req)
	if err != nil {
		o.logEntry(url, 0, "ai call failed", map[string]any{"error": err.Error()})
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		o.logEntry(url, resp.StatusCode, "ai call failed", map[string]any{
			"model":    model,
			"response": string(body),
		})
		return "", fmt.Errorf("openai error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Output []struct {
			Type    string `json:"type"`
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, item := range parsed.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && strings.TrimSpace(c.Text) != "" {
					if sb.Len() > 0 {
						sb.WriteString("\n")
					}
					sb.WriteString(c.Text)
				}
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		o.logEntry(url, resp.StatusCode, "ai call failed", map[string]any{
			"model": model,
			"error": "empty output",
		})
		return "", fmt.Errorf("empty response from model (no output_text items found)")
	}

	o.logEntry(url, resp.StatusCode, "ai reply generated", map[string]any{
		"model": model,
		"turns": len(turns),
	})
	return out, nil
}
