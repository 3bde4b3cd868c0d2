package responses_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportchat/chat-api/internal/interfaces/httpserver/responses"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

func handleErrorBody(t *testing.T, err error) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	responses.HandleError(c, err, "request failed")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandleError_DetailInDevelopment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	err := apperrors.New(apperrors.KindStorage, "insert conversation").
		WithDetails(map[string]any{"table": "conversation"})
	code, body := handleErrorBody(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "STORAGE", body["code"])
	assert.Contains(t, body["detail"], "insert conversation")
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "conversation", details["table"])
}

func TestHandleError_DetailHiddenInRelease(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	err := apperrors.New(apperrors.KindStorage, "insert conversation").
		WithDetails(map[string]any{"table": "conversation"})
	code, body := handleErrorBody(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "details")
	assert.Equal(t, "insert conversation", body["message"])
}
