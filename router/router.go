package router

import (
	"log"
	"net/http"

	"clara/config"
	"clara/controllers"
	"clara/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Initialize wires all routes and middlewares.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	_ = cfg

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Webhook (Meta) - /webhook/:platform (instagram | whatsapp)
	// Mantém /webhook funcionando em dev (instagram)
	api.GET("/webhook", controllers.WebhookVerify)
	api.POST("/webhook", controllers.WebhookUpdate)
	api.GET("/webhook/:platform", controllers.WebhookVerify)
	api.POST("/webhook/:platform", controllers.WebhookUpdate)

	// Leitura do dashboard
	api.GET("/logs", Logger(), controllers.GetLogs)
	api.GET("/conversations", Logger(), controllers.GetConversations)
	api.GET("/threads", Logger(), controllers.GetConversations) // alias
	api.GET("/conversations/:id", Logger(), controllers.GetConversationByID)

	// Ações do operador
	api.POST("/conversations/:id/message", Logger(), controllers.PostConversationMessage)
	api.POST("/conversations/:id/ai", Logger(), controllers.SetConversationAI)

	// Settings de runtime
	api.GET("/settings", Logger(), controllers.GetSettings)
	api.POST("/settings", Logger(), controllers.UpdateSettings)

	// Catálogo (contexto da IA)
	api.GET("/products", Logger(), controllers.GetProducts)
	api.POST("/products", Logger(), controllers.CreateProduct)
	api.PUT("/products/:id", Logger(), controllers.UpdateProduct)
	api.DELETE("/products/:id", Logger(), controllers.DeleteProduct)

	log.Printf("Routes initialized")
}
