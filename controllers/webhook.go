package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"clara/config"
	dbpkg "clara/db"
	"clara/ingest"
	"clara/models"
	"clara/tools"

	"github.com/gin-gonic/gin"
)

// /webhook/:platform; sem param mantém /webhook funcionando em dev
// (instagram).
func resolvePlatform(c *gin.Context) string {
	param := strings.ToLower(strings.TrimSpace(c.Param("platform")))
	if param == "" {
		return models.PLATFORM_INSTAGRAM
	}
	if !models.ValidPlatform(param) {
		return ""
	}
	return param
}

// GET /webhook e GET /webhook/:platform
//
// A Meta chama com hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
// Devolve o challenge literal só quando mode e token batem.
func WebhookVerify(c *gin.Context) {
	verifyToken := config.Current().VerifyToken

	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	verified := verifyToken != "" && mode == "subscribe" && token == verifyToken && challenge != ""

	outcome := "verification failed"
	status := http.StatusForbidden
	if verified {
		outcome = "webhook verified"
		status = http.StatusOK
	}

	if st := dbpkg.StoreInstance(c); st != nil {
		payload, _ := json.Marshal(map[string]any{
			"mode":         mode,
			"verify_token": token,
			"challenge":    challenge,
		})
		_ = st.AppendLog(models.LogEntry{
			Direction: models.LOG_INBOUND_WEBHOOK,
			Method:    http.MethodGet,
			URL:       c.Request.URL.Path,
			Status:    status,
			Outcome:   outcome,
			Payload:   tools.RedactJSON(payload),
		})
	}

	if verified {
		c.String(http.StatusOK, "%s", challenge)
		return
	}

	RespondError(c, "forbidden", http.StatusForbidden)
}

// POST /webhook e POST /webhook/:platform
func WebhookUpdate(c *gin.Context) {
	platform := resolvePlatform(c)
	if platform == "" {
		RespondError(c, "plataforma desconhecida", http.StatusNotFound)
		return
	}

	st := dbpkg.StoreInstance(c)
	ing := dbpkg.IngestorInstance(c)
	if st == nil || ing == nil {
		RespondError(c, "ingestor não configurado no contexto", http.StatusInternalServerError)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, "failed to read body", http.StatusBadRequest)
		return
	}

	msgs, parseErr := ingest.ParseEnvelope(platform, raw)

	status := http.StatusOK
	outcome := "events received"
	if parseErr != nil {
		// corpo não-JSON é o único caso de ack não-200
		status = http.StatusInternalServerError
		outcome = "invalid json"
	}
	_ = st.AppendLog(models.LogEntry{
		Direction: models.LOG_INBOUND_WEBHOOK,
		Method:    http.MethodPost,
		URL:       c.Request.URL.Path,
		Status:    status,
		Outcome:   outcome,
		Payload:   tools.RedactJSON(raw),
	})

	if parseErr != nil {
		RespondError(c, "invalid json", http.StatusInternalServerError)
		return
	}

	// responde rápido pro Meta; o processamento segue em background, num
	// contexto próprio (o Meta pode fechar a conexão assim que lê o ack)
	c.String(http.StatusOK, "EVENT_RECEIVED")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	go func() {
		defer cancel()
		ing.Dispatch(ctx, msgs)
	}()
}
