// Package v1 registers the versioned API routes.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/supportchat/chat-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches all v1 routes under the /v1 prefix. chatMiddleware is
// applied to the chat endpoints only, so FAQ management is not throttled by
// the per-session rate limiter.
func (r *Routes) Register(engine *gin.Engine, chatMiddleware ...gin.HandlerFunc) {
	group := engine.Group("/v1")
	registerChatRoutes(group, r.handlers.Chat, chatMiddleware...)
	registerFAQRoutes(group, r.handlers.FAQ)
}
