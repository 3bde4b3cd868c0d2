// Package llm wraps the hosted chat-completion API behind a retrying
// generator with classified failures.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Provider executes a single chat-completion attempt against the upstream
// API. Implementations classify failures via apperrors: transient transport
// errors, 429 and 5xx responses are retriable; authentication failures and
// malformed responses are not.
type Provider interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error)
}

// Result is a successful generation.
type Result struct {
	Content    string
	TokensUsed int
}

// Options bound a single generation request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
}
