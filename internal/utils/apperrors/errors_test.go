package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

func TestKindOf(t *testing.T) {
	base := apperrors.New(apperrors.KindNotFound, "conversation not found")
	wrapped := fmt.Errorf("handling turn: %w", base)

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(wrapped))
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(errors.New("plain")))
}

func TestIsRetriable(t *testing.T) {
	fatal := apperrors.New(apperrors.KindLLMService, "invalid api key").WithRetriable(false)
	transient := apperrors.New(apperrors.KindLLMService, "rate limited").WithRetriable(true)

	assert.False(t, apperrors.IsRetriable(fatal))
	assert.True(t, apperrors.IsRetriable(transient))
	assert.True(t, apperrors.IsRetriable(errors.New("unclassified")), "unclassified errors default to retriable")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.Wrap(cause, apperrors.KindStorage, "create message")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind apperrors.Kind
		want int
	}{
		{apperrors.KindValidation, http.StatusBadRequest},
		{apperrors.KindNotFound, http.StatusNotFound},
		{apperrors.KindRateLimit, http.StatusTooManyRequests},
		{apperrors.KindLLMService, http.StatusBadGateway},
		{apperrors.KindStorage, http.StatusServiceUnavailable},
		{apperrors.KindCache, http.StatusServiceUnavailable},
		{apperrors.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, apperrors.HTTPStatus(tt.kind), string(tt.kind))
	}
}
