package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yoockh/fluentspeak/internal/api/handlers"
	"github.com/yoockh/fluentspeak/internal/api/middleware"
)

type Deps struct {
	Conversation *handlers.ConversationHandler
	Scenario     *handlers.ScenarioHandler
	Session      *handlers.SessionHandler // nil when session audit is disabled
	WS           *handlers.WSHandler
	Auth         gin.HandlerFunc // defaults to middleware.JWTAuth()
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Auth == nil {
		d.Auth = middleware.JWTAuth()
	}

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(d.Auth)

	auth.POST("/conversations", d.Conversation.Create)
	auth.GET("/conversations/:id", d.Conversation.Get)
	auth.GET("/conversations/:id/messages", d.Conversation.ListMessages)

	auth.GET("/scenarios", d.Scenario.List)
	auth.POST("/scenarios", middleware.RequireAdmin(), d.Scenario.Create)

	if d.Session != nil {
		auth.GET("/sessions/:session_id", d.Session.Get)
		auth.GET("/conversations/:id/sessions", d.Session.ListByConversation)
	}

	// WebSocket
	auth.GET("/ws/assistant", d.WS.AssistantWS)
	auth.GET("/ws/coach", d.WS.CoachWS)
}
