// Package handlers exposes the HTTP entrypoints for the chat service.
package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/supportchat/chat-api/internal/domain/conversation"
	"github.com/supportchat/chat-api/internal/domain/faq"
)

// ChatService is the slice of the conversation orchestrator the HTTP layer
// depends on.
type ChatService interface {
	SendMessage(ctx context.Context, in conversation.SendInput) (*conversation.SendResult, error)
	GetHistory(ctx context.Context, sessionID string, limit int, beforeID uint) (*conversation.HistoryPage, error)
	DeleteConversation(ctx context.Context, sessionID string) error
}

// FAQService is the slice of the knowledge-base service the HTTP layer
// depends on.
type FAQService interface {
	Create(ctx context.Context, entry *faq.FAQ) error
	Get(ctx context.Context, id uint) (*faq.FAQ, error)
	ListActive(ctx context.Context) ([]faq.FAQ, error)
	ListByCategory(ctx context.Context, category string) ([]faq.FAQ, error)
	Update(ctx context.Context, id uint, update faq.Update) (*faq.FAQ, error)
	Deactivate(ctx context.Context, id uint) error
}

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat   *ChatHandler
	FAQ    *FAQHandler
	Health *HealthHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(chatService ChatService, faqService FAQService, health *HealthHandler, log zerolog.Logger) *Provider {
	return &Provider{
		Chat:   NewChatHandler(chatService, log),
		FAQ:    NewFAQHandler(faqService, log),
		Health: health,
	}
}
