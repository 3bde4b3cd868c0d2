// Package responses defines the HTTP response payloads and the shared
// error-to-status mapping.
package responses

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// ErrorResponse is the error envelope returned to clients. Detail and
// Details carry the underlying cause and are populated outside release
// mode only.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Error     string         `json:"error"`
	Message   string         `json:"message,omitempty"`
	Retriable bool           `json:"retriable"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp"`
	Detail    string         `json:"detail,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HandleError maps a domain error onto an HTTP response. In release mode the
// underlying cause stays in the logs; everywhere else it is echoed back to
// ease debugging.
func HandleError(reqCtx *gin.Context, err error, message string) {
	kind := apperrors.KindOf(err)

	body := ErrorResponse{
		Code:      string(kind),
		Error:     message,
		Retriable: apperrors.IsRetriable(err),
		RequestID: reqCtx.GetString("request_id"),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
	}

	if gin.Mode() != gin.ReleaseMode && err != nil {
		body.Detail = err.Error()
		if appErr != nil {
			body.Details = appErr.Details
		}
	}

	reqCtx.AbortWithStatusJSON(apperrors.HTTPStatus(kind), body)
}

// HandleBindError reports a malformed request body or query.
func HandleBindError(reqCtx *gin.Context, err error) {
	HandleError(reqCtx, apperrors.Wrap(err, apperrors.KindValidation, "invalid request payload"),
		"invalid request")
}
