package controllers

import (
	"net/http"

	dbpkg "clara/db"

	"github.com/gin-gonic/gin"
)

// GET /api/logs
// Event log das interações HTTP, mais recente primeiro. Payloads já
// estão redigidos na escrita; nada aqui des-redige.
func GetLogs(c *gin.Context) {
	st := dbpkg.StoreInstance(c)
	if st == nil {
		RespondError(c, "store não configurado no contexto", http.StatusInternalServerError)
		return
	}

	logs, err := st.ListLogs()
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, logs)
}
