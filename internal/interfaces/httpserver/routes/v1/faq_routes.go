package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/supportchat/chat-api/internal/interfaces/httpserver/handlers"
)

func registerFAQRoutes(router gin.IRoutes, handler *handlers.FAQHandler) {
	router.POST("/faqs", handler.Create)
	router.GET("/faqs", handler.List)
	router.GET("/faqs/:id", handler.Get)
	router.PATCH("/faqs/:id", handler.Update)
	router.DELETE("/faqs/:id", handler.Delete)
}
