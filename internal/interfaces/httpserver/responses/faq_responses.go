package responses

import (
	"time"

	"github.com/supportchat/chat-api/internal/domain/faq"
)

// FAQPayload is a knowledge-base entry as returned to clients.
type FAQPayload struct {
	ID        uint      `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  *string   `json:"category,omitempty"`
	Keywords  []string  `json:"keywords"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FAQListPayload wraps a listing of entries.
type FAQListPayload struct {
	Data []FAQPayload `json:"data"`
}

// FromFAQ maps the domain entry to its payload.
func FromFAQ(f *faq.FAQ) FAQPayload {
	return FAQPayload{
		ID:        f.ID,
		Question:  f.Question,
		Answer:    f.Answer,
		Category:  f.Category,
		Keywords:  f.Keywords,
		Priority:  f.Priority,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// FromFAQList maps a slice of entries to the listing payload.
func FromFAQList(list []faq.FAQ) FAQListPayload {
	data := make([]FAQPayload, len(list))
	for i := range list {
		data[i] = FromFAQ(&list[i])
	}
	return FAQListPayload{Data: data}
}
