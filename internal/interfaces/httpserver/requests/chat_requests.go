// Package requests defines the HTTP request payloads.
package requests

// SendMessageRequest is the body of POST /v1/chat/message. A missing
// session_id opens a fresh conversation under a generated one.
type SendMessageRequest struct {
	SessionID      string         `json:"session_id"`
	Message        string         `json:"message" binding:"required"`
	UserIdentifier *string        `json:"user_identifier,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// HistoryQuery holds the pagination parameters of
// GET /v1/chat/conversations/:session_id.
type HistoryQuery struct {
	Limit  int  `form:"limit,default=20"`
	Before uint `form:"before"`
}
