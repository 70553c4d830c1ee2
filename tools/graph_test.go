package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clara/models"
)

func TestGraphSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message_id": "mid.1"}`))
	}))
	defer srv.Close()

	var logged []models.LogEntry
	g := GraphClient{
		AccessToken: "EAAB-token-de-teste",
		ApiVersion:  "v20.0",
		BaseURL:     srv.URL,
		Log:         func(e models.LogEntry) { logged = append(logged, e) },
	}

	if err := g.SendText(context.Background(), "123", "olá!"); err != nil {
		t.Fatal(err)
	}

	if gotPath != "/v20.0/me/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer EAAB-token-de-teste" {
		t.Fatalf("auth = %q", gotAuth)
	}
	recipient, _ := gotBody["recipient"].(map[string]any)
	message, _ := gotBody["message"].(map[string]any)
	if recipient["id"] != "123" || message["text"] != "olá!" {
		t.Fatalf("body = %v", gotBody)
	}

	if len(logged) != 1 || logged[0].Outcome != "message sent" {
		t.Fatalf("log = %+v", logged)
	}
	if logged[0].Direction != models.LOG_OUTBOUND_API {
		t.Fatalf("direction = %q", logged[0].Direction)
	}
}

func TestGraphSendTextErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad recipient"}}`))
	}))
	defer srv.Close()

	var logged []models.LogEntry
	g := GraphClient{
		AccessToken: "tok",
		ApiVersion:  "v20.0",
		BaseURL:     srv.URL,
		Log:         func(e models.LogEntry) { logged = append(logged, e) },
	}

	err := g.SendText(context.Background(), "123", "oi")
	if err == nil {
		t.Fatal("status 400 deveria dar erro")
	}
	if len(logged) != 1 || logged[0].Outcome != "message send failed" || logged[0].Status != 400 {
		t.Fatalf("log = %+v", logged)
	}
}

func TestGraphSendTextWithoutToken(t *testing.T) {
	g := GraphClient{ApiVersion: "v20.0"}
	if err := g.SendText(context.Background(), "123", "oi"); err == nil {
		t.Fatal("sem token deveria dar erro")
	}
}

func TestGraphFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"name": "Ana Souza", "username": "ana", "profile_pic": "http://pic"}`))
	}))
	defer srv.Close()

	var logged []models.LogEntry
	g := GraphClient{
		AccessToken: "EAAB-token-de-teste",
		ApiVersion:  "v20.0",
		BaseURL:     srv.URL,
		Log:         func(e models.LogEntry) { logged = append(logged, e) },
	}

	p, err := g.FetchProfile(context.Background(), "123")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Ana Souza" || p.Username != "ana" || p.ProfilePic != "http://pic" {
		t.Fatalf("profile = %+v", p)
	}

	// o token não pode aparecer na URL logada
	for _, e := range logged {
		if strings.Contains(e.URL, "EAAB-token-de-teste") {
			t.Fatalf("token vazou no log: %s", e.URL)
		}
	}
}

func TestGraphTypingIndicator(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := GraphClient{AccessToken: "tok", ApiVersion: "v20.0", BaseURL: srv.URL}
	if err := g.SendTypingIndicator(context.Background(), "123"); err != nil {
		t.Fatal(err)
	}
	if gotBody["sender_action"] != "typing_on" {
		t.Fatalf("body = %v", gotBody)
	}
}
