package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clara/config"
	"clara/models"
	"clara/store"
)

func TestGetSettingsMasksSecrets(t *testing.T) {
	config.SetCurrent(models.Settings{
		VerifyToken: "meu-verify-token",
		AccessToken: "EAAB-access-token",
		OpenAIKey:   "sk-chave-openai",
		AutoReply:   true,
	})

	r := newTestRouter(t, store.NewMemory(10))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := w.Body.String()
	for _, secret := range []string{"meu-verify-token", "EAAB-access-token", "sk-chave-openai"} {
		if strings.Contains(body, secret) {
			t.Fatalf("segredo %q vazou: %s", secret, body)
		}
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["verify_token"] != "****oken" {
		t.Fatalf("verify_token mascarado = %v", resp["verify_token"])
	}
	if resp["auto_reply"] != true {
		t.Fatalf("auto_reply = %v", resp["auto_reply"])
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	config.SetCurrent(models.Settings{
		VerifyToken: "token-antigo",
		AccessToken: "access-antigo",
		AutoReply:   true,
	})

	st := store.NewMemory(10)
	r := newTestRouter(t, st)

	body, _ := json.Marshal(map[string]any{
		"verify_token": "token-novo",
		"auto_reply":   false,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	got := config.Current()
	if got.VerifyToken != "token-novo" {
		t.Fatalf("verify token = %q", got.VerifyToken)
	}
	// campo ausente no body não muda
	if got.AccessToken != "access-antigo" {
		t.Fatalf("access token = %q", got.AccessToken)
	}
	if got.AutoReply {
		t.Fatal("auto_reply deveria ter desligado")
	}
	// defaults preenchidos pelo Normalize
	if got.GraphVersion == "" || got.OpenAIModel == "" {
		t.Fatalf("defaults faltando: %+v", got)
	}

	// persistido no store
	stored, found, err := st.GetSettings()
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if stored.VerifyToken != "token-novo" {
		t.Fatalf("persistido = %+v", stored)
	}
}
