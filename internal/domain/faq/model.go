// Package faq implements the knowledge-base retrieval used to ground
// assistant answers.
package faq

import "time"

// FAQ is a knowledge-base entry. Entries are soft-deleted via IsActive and
// only active entries are eligible for retrieval.
type FAQ struct {
	ID        uint      `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  *string   `json:"category,omitempty"`
	Keywords  []string  `json:"keywords"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update describes a partial FAQ mutation. Nil fields are left unchanged.
type Update struct {
	Question *string
	Answer   *string
	Category *string
	Keywords []string
	Priority *int
	IsActive *bool
}
