package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clara/config"
	"clara/models"
	"clara/store"
)

func seedConversation(t *testing.T, st store.Store) *models.Conversation {
	t.Helper()
	conv := &models.Conversation{
		ID:             "instagram:123",
		Platform:       models.PLATFORM_INSTAGRAM,
		ExternalUserID: "123",
		DisplayName:    "Ana",
	}
	if err := st.CreateConversation(conv); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AppendMessage(conv.ID, models.Message{
		ID:        "m1",
		Direction: models.DIRECTION_INCOMING,
		Text:      "Tem caneca?",
	}); err != nil {
		t.Fatal(err)
	}
	return conv
}

func TestGetConversations(t *testing.T) {
	st := store.NewMemory(10)
	seedConversation(t, st)
	r := newTestRouter(t, st)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var convs []models.Conversation
	if err := json.Unmarshal(w.Body.Bytes(), &convs); err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 || convs[0].ID != "instagram:123" {
		t.Fatalf("convs = %+v", convs)
	}
}

func TestGetConversationByID(t *testing.T) {
	st := store.NewMemory(10)
	seedConversation(t, st)
	r := newTestRouter(t, st)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/instagram:123", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/conversations/instagram:999", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status para id inexistente = %d, want 404", w.Code)
	}
}

func TestPostConversationMessagePausesAI(t *testing.T) {
	// sem access token: o envio falha rápido, mas a mensagem é gravada
	config.SetCurrent(models.Settings{})

	st := store.NewMemory(10)
	conv := seedConversation(t, st)
	r := newTestRouter(t, st)

	body, _ := json.Marshal(map[string]string{"text": "Oi! Aqui é a Paula, da loja."})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/"+conv.ID+"/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	got, _ := st.GetConversation(conv.ID)
	if !got.AiPaused {
		t.Fatal("mensagem humana deveria pausar a IA")
	}
	if len(got.Messages) != 2 {
		t.Fatalf("mensagens = %d, want 2", len(got.Messages))
	}
	out := got.Messages[1]
	if out.Direction != models.DIRECTION_OUTGOING {
		t.Fatalf("direction = %q", out.Direction)
	}
	if out.DeliveryStatus != models.DELIVERY_FAILED {
		t.Fatalf("delivery sem token = %q, want failed", out.DeliveryStatus)
	}
}

func TestPostConversationMessageValidation(t *testing.T) {
	config.SetCurrent(models.Settings{})
	st := store.NewMemory(10)
	conv := seedConversation(t, st)
	r := newTestRouter(t, st)

	// texto vazio
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/"+conv.ID+"/message",
		bytes.NewBufferString(`{"text": "  "}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("texto vazio: status = %d, want 400", w.Code)
	}

	// conversa inexistente
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/conversations/instagram:999/message",
		bytes.NewBufferString(`{"text": "oi"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("conversa inexistente: status = %d, want 404", w.Code)
	}
}

func TestSetConversationAI(t *testing.T) {
	st := store.NewMemory(10)
	conv := seedConversation(t, st)
	if err := st.SetAIPaused(conv.ID, true); err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, st)

	// retoma a IA
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/"+conv.ID+"/ai",
		bytes.NewBufferString(`{"paused": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	got, _ := st.GetConversation(conv.ID)
	if got.AiPaused {
		t.Fatal("IA deveria ter sido retomada")
	}

	// paused ausente é erro
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/conversations/"+conv.ID+"/ai",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("paused ausente: status = %d, want 400", w.Code)
	}
}
