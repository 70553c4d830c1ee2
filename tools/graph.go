package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clara/models"
)

// GraphClient fala com a Graph API da Meta (profile fetch e envio de
// mensagens Instagram/WhatsApp). Cada chamada gera um LogEntry redigido
// via o sink Log, quando configurado.
type GraphClient struct {
	AccessToken string
	ApiVersion  string
	BaseURL     string                 // default https://graph.facebook.com; sobrescrito nos testes
	HTTPClient  *http.Client           // default com timeout de 10s
	Log         func(models.LogEntry)  // sink do event log, opcional
}

// Profile is the subset of profile fields the dashboard shows.
type Profile struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

func (g GraphClient) baseURL() string {
	if g.BaseURL != "" {
		return g.BaseURL
	}
	return "https://graph.facebook.com"
}

func (g GraphClient) httpClient() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	// timeout curto: uma chamada lenta não pode segurar o pipeline
	return &http.Client{Timeout: 10 * time.Second}
}

func (g GraphClient) logEntry(method, rawURL string, status int, outcome string, payload any) {
	if g.Log == nil {
		return
	}
	b, _ := json.Marshal(payload)
	g.Log(models.LogEntry{
		Direction: models.LOG_OUTBOUND_API,
		Method:    method,
		URL:       RedactURL(rawURL),
		Status:    status,
		Outcome:   outcome,
		Payload:   RedactJSON(b),
	})
}

// FetchProfile busca name/username/profile_pic de um usuário.
func (g GraphClient) FetchProfile(ctx context.Context, userID string) (Profile, error) {
	if g.AccessToken == "" {
		return Profile{}, fmt.Errorf("access token não configurado")
	}

	url := fmt.Sprintf("%s/%s/%s?fields=name,username,profile_pic&access_token=%s",
		g.baseURL(), g.ApiVersion, userID, g.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Profile{}, err
	}

	resp, err := g.httpClient().Do(req)
	if err != nil {
		g.logEntry(http.MethodGet, url, 0, "profile fetch failed", map[string]any{"error": err.Error()})
		return Profile{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 300 {
		g.logEntry(http.MethodGet, url, resp.StatusCode, "profile fetch failed", map[string]any{
			"response": string(body),
		})
		return Profile{}, fmt.Errorf("graph api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, err
	}

	g.logEntry(http.MethodGet, url, resp.StatusCode, "profile fetched", map[string]any{
		"user_id": userID,
		"name":    p.Name,
	})
	return p, nil
}

// SendText envia uma mensagem de texto via POST /me/messages.
func (g GraphClient) SendText(ctx context.Context, recipientID, text string) error {
	return g.postMessage(ctx, map[string]any{
		"recipient": map[string]any{"id": recipientID},
		"message":   map[string]any{"text": text},
	}, "message sent", "message send failed")
}

// SendTypingIndicator sinaliza "digitando..." antes da resposta da IA.
// Best-effort: falha é só logada.
func (g GraphClient) SendTypingIndicator(ctx context.Context, recipientID string) error {
	return g.postMessage(ctx, map[string]any{
		"recipient":     map[string]any{"id": recipientID},
		"sender_action": "typing_on",
	}, "typing indicator sent", "typing indicator failed")
}

func (g GraphClient) postMessage(ctx context.Context, reqBody map[string]any, okOutcome, failOutcome string) error {
	if g.AccessToken == "" {
		return fmt.Errorf("access token não configurado")
	}

	url := fmt.Sprintf("%s/%s/me/messages", g.baseURL(), g.ApiVersion)

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient().Do(req)
	if err != nil {
		g.logEntry(http.MethodPost, url, 0, failOutcome, map[string]any{
			"request": reqBody,
			"error":   err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 300 {
		g.logEntry(http.MethodPost, url, resp.StatusCode, failOutcome, map[string]any{
			"request":  reqBody,
			"response": string(respBody),
		})
		return fmt.Errorf("graph api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	g.logEntry(http.MethodPost, url, resp.StatusCode, okOutcome, map[string]any{
		"request": reqBody,
	})
	return nil
}
