// Package llmprovider implements the llm.Provider interface against an
// OpenAI-compatible chat-completion API.
package llmprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/supportchat/chat-api/internal/domain/llm"
	"github.com/supportchat/chat-api/internal/infrastructure/metrics"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// Config holds upstream connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Referer and Title are forwarded as attribution headers when set.
	Referer string
	Title   string
}

// Client calls the upstream chat-completion endpoint. Each call is a single
// attempt; retrying is the generator's job, driven by the error
// classification this client attaches.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey).
		SetTimeout(timeout)
	if cfg.Referer != "" {
		client.SetHeader("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		client.SetHeader("X-Title", cfg.Title)
	}

	return &Client{httpClient: client}
}

// errorBody is the upstream error envelope.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// CreateChatCompletion posts one completion request and classifies failures.
func (c *Client) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	var completion openai.ChatCompletionResponse
	var apiErr errorBody

	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		SetError(&apiErr).
		Post("/chat/completions")
	metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		// transport-level failure: timeout, refused connection, DNS
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.KindLLMService, "chat completion request failed").
			WithRetriable(true)
	}

	if resp.IsError() {
		return nil, classifyStatus(resp.StatusCode(), apiErr)
	}

	return &completion, nil
}

// classifyStatus maps upstream HTTP statuses onto retriability: rate limits
// and server errors are transient, authentication and other client errors
// are not.
func classifyStatus(status int, body errorBody) error {
	detail := body.Error.Message
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.New(apperrors.KindLLMService,
			fmt.Sprintf("authentication with AI service failed: %s", detail)).WithRetriable(false)
	case status == http.StatusTooManyRequests:
		return apperrors.New(apperrors.KindRateLimit,
			fmt.Sprintf("AI service rate limited: %s", detail)).WithRetriable(true)
	case status >= http.StatusInternalServerError:
		return apperrors.New(apperrors.KindLLMService,
			fmt.Sprintf("AI service error (%d): %s", status, detail)).WithRetriable(true)
	default:
		return apperrors.New(apperrors.KindLLMService,
			fmt.Sprintf("AI service rejected request (%d): %s", status, detail)).WithRetriable(false)
	}
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)
