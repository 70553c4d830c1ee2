package controllers

import (
	"net/http"
	"strings"
	"time"

	"clara/config"
	dbpkg "clara/db"
	"clara/models"
	"clara/store"
	"clara/tools"

	"github.com/gin-gonic/gin"
)

// GET /api/conversations e GET /api/threads
// Ordenadas da mais recentemente ativa para a mais antiga.
func GetConversations(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	convs, err := st.ListConversations()
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, convs)
}

// GET /api/conversations/:id
func GetConversationByID(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	conv, err := st.GetConversation(c.Param("id"))
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if conv == nil {
		RespondError(c, "conversa não encontrada", http.StatusNotFound)
		return
	}
	RespondSuccess(c, conv)
}

type postMessageReq struct {
	Text string `json:"text"`
}

// POST /api/conversations/:id/message
//
// Mensagem enviada por um humano pelo dashboard. Pausa a IA da conversa
// (o operador assumiu) e relaya pela Graph API. Falha de envio não some:
// a mensagem fica gravada com delivery_status=failed.
func PostConversationMessage(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var req postMessageReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		RespondError(c, "text é obrigatório", http.StatusBadRequest)
		return
	}

	conv, err := st.GetConversation(c.Param("id"))
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if conv == nil {
		RespondError(c, "conversa não encontrada", http.StatusNotFound)
		return
	}

	// humano assumiu: suprime respostas automáticas até liberar de novo
	if err := st.SetAIPaused(conv.ID, true); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	settings := config.Current()
	graph := tools.GraphClient{
		AccessToken: settings.AccessToken,
		ApiVersion:  settings.GraphVersion,
		Log:         store.LogSink(st),
	}

	delivery := models.DELIVERY_SENT
	if err := graph.SendText(c.Request.Context(), conv.ExternalUserID, text); err != nil {
		delivery = models.DELIVERY_FAILED
	}

	now := time.Now()
	msg := models.Message{
		ID:             models.NewMessageID(),
		Direction:      models.DIRECTION_OUTGOING,
		Text:           text,
		DeliveryStatus: delivery,
		CreatedAt:      &now,
	}
	if _, err := st.AppendMessage(conv.ID, msg); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"message": msg})
}

type setAIReq struct {
	Paused *bool `json:"paused"`
}

// POST /api/conversations/:id/ai
// Liga/desliga a pausa de IA da conversa ({"paused": false} retoma as
// respostas automáticas).
func SetConversationAI(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var req setAIReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Paused == nil {
		RespondError(c, "paused é obrigatório", http.StatusBadRequest)
		return
	}

	conv, err := st.GetConversation(c.Param("id"))
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if conv == nil {
		RespondError(c, "conversa não encontrada", http.StatusNotFound)
		return
	}

	if err := st.SetAIPaused(conv.ID, *req.Paused); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, true)
}
