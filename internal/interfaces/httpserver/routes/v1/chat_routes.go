package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/supportchat/chat-api/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router *gin.RouterGroup, handler *handlers.ChatHandler, middleware ...gin.HandlerFunc) {
	chat := router.Group("/chat", middleware...)
	chat.POST("/message", handler.SendMessage)
	chat.GET("/conversations/:session_id", handler.GetConversation)
	chat.DELETE("/conversations/:session_id", handler.DeleteConversation)
}
