package faq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{
			name:    "drops stop words and short tokens",
			message: "How do I reset my password?",
			want:    []string{"reset", "password"},
		},
		{
			name:    "lowercases and strips punctuation",
			message: "Billing... REFUND!! (urgent)",
			want:    []string{"billing", "refund", "urgent"},
		},
		{
			name:    "only stop words yields empty set",
			message: "how do you do it",
			want:    nil,
		},
		{
			name:    "empty message yields empty set",
			message: "   ",
			want:    nil,
		},
		{
			name:    "punctuation only yields empty set",
			message: "?!... --- !!!",
			want:    nil,
		},
		{
			name: "caps at ten keywords",
			message: "alpha bravo charlie delta echo foxtrot golf hotel india juliet " +
				"kilo lima mike",
			want: []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.message))
		})
	}
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	msg := "my invoice shows a double charge for the premium plan"
	first := ExtractKeywords(msg)
	second := ExtractKeywords(msg)
	assert.Equal(t, first, second)
}

func TestBuildTsQuery(t *testing.T) {
	assert.Equal(t, "reset | password", BuildTsQuery([]string{"reset", "password"}))
	assert.Equal(t, "", BuildTsQuery(nil))
	assert.False(t, strings.Contains(BuildTsQuery([]string{"single"}), "|"))
}
