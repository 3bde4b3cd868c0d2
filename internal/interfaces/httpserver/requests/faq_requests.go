package requests

// CreateFAQRequest is the body of POST /v1/faqs.
type CreateFAQRequest struct {
	Question string   `json:"question" binding:"required"`
	Answer   string   `json:"answer" binding:"required"`
	Category *string  `json:"category,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Priority int      `json:"priority"`
}

// UpdateFAQRequest is the body of PATCH /v1/faqs/:id. Omitted fields are
// left unchanged.
type UpdateFAQRequest struct {
	Question *string  `json:"question,omitempty"`
	Answer   *string  `json:"answer,omitempty"`
	Category *string  `json:"category,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Priority *int     `json:"priority,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}
