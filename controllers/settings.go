package controllers

import (
	"net/http"
	"strings"

	"clara/config"
	dbpkg "clara/db"
	"clara/tools"

	"github.com/gin-gonic/gin"
)

// GET /api/settings
// Segredos voltam mascarados (****últimos4); o dashboard só precisa
// saber se estão configurados.
func GetSettings(c *gin.Context) {
	s := config.Current()
	RespondSuccess(c, gin.H{
		"verify_token":  tools.MaskSecret(s.VerifyToken),
		"access_token":  tools.MaskSecret(s.AccessToken),
		"openai_key":    tools.MaskSecret(s.OpenAIKey),
		"openai_model":  s.OpenAIModel,
		"graph_version": s.GraphVersion,
		"auto_reply":    s.AutoReply,
	})
}

type updateSettingsReq struct {
	VerifyToken  *string `json:"verify_token"`
	AccessToken  *string `json:"access_token"`
	OpenAIKey    *string `json:"openai_key"`
	OpenAIModel  *string `json:"openai_model"`
	GraphVersion *string `json:"graph_version"`
	AutoReply    *bool   `json:"auto_reply"`
}

// POST /api/settings
// Atualização parcial: só os campos presentes no body mudam. Persiste no
// store e troca o estado de runtime. Falha de storage volta explícita
// pro caller (o dashboard cai nos defaults).
func UpdateSettings(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var req updateSettingsReq
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	s := config.Current()
	if req.VerifyToken != nil {
		s.VerifyToken = strings.TrimSpace(*req.VerifyToken)
	}
	if req.AccessToken != nil {
		s.AccessToken = strings.TrimSpace(*req.AccessToken)
	}
	if req.OpenAIKey != nil {
		s.OpenAIKey = strings.TrimSpace(*req.OpenAIKey)
	}
	if req.OpenAIModel != nil {
		s.OpenAIModel = strings.TrimSpace(*req.OpenAIModel)
	}
	if req.GraphVersion != nil {
		s.GraphVersion = strings.TrimSpace(*req.GraphVersion)
	}
	if req.AutoReply != nil {
		s.AutoReply = *req.AutoReply
	}
	s.Normalize()

	if err := st.PutSettings(s); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	config.SetCurrent(s)

	RespondSuccess(c, true)
}
