package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondError devolve o erro no formato {"error": ...}.
func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

// RespondSuccess devolve 200 com o payload direto no corpo.
func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
