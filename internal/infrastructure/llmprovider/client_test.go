package llmprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

func completionRequest() openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: "test-model",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "hi"},
		},
	}
}

func TestCreateChatCompletion_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "hello"}},
			},
			Usage: openai.Usage{TotalTokens: 7},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Timeout: 5 * time.Second})

	resp, err := client.CreateChatCompletion(context.Background(), completionRequest())

	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestCreateChatCompletion_RateLimitIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 5 * time.Second})

	_, err := client.CreateChatCompletion(context.Background(), completionRequest())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindRateLimit, apperrors.KindOf(err))
	assert.True(t, apperrors.IsRetriable(err))
	assert.Contains(t, err.Error(), "slow down")
}

func TestCreateChatCompletion_AuthFailureIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "bad", Timeout: 5 * time.Second})

	_, err := client.CreateChatCompletion(context.Background(), completionRequest())

	require.Error(t, err)
	assert.False(t, apperrors.IsRetriable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateChatCompletion_ServerErrorIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 5 * time.Second})

	_, err := client.CreateChatCompletion(context.Background(), completionRequest())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindLLMService, apperrors.KindOf(err))
	assert.True(t, apperrors.IsRetriable(err))
}

func TestCreateChatCompletion_ConnectionRefusedIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 2 * time.Second})

	_, err := client.CreateChatCompletion(context.Background(), completionRequest())

	require.Error(t, err)
	assert.True(t, apperrors.IsRetriable(err))
}

func TestCreateChatCompletion_OtherClientErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"context length exceeded"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 5 * time.Second})

	_, err := client.CreateChatCompletion(context.Background(), completionRequest())

	require.Error(t, err)
	assert.False(t, apperrors.IsRetriable(err))
	assert.Contains(t, err.Error(), "context length exceeded")
}
