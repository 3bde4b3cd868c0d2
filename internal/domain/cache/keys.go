package cache

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

const (
	faqPrefix     = "faq:"
	historyPrefix = "messages:"
)

// FAQKey derives the cache key for FAQ search results from a normalized hash
// of the user message, independent of any conversation.
func FAQKey(userMessage string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(userMessage))), " ")
	h := fnv.New64a()
	h.Write([]byte(normalized))
	return faqPrefix + strconv.FormatUint(h.Sum64(), 36)
}

// HistoryKey is the cache key for a conversation's recent message context.
func HistoryKey(conversationID uint) string {
	return fmt.Sprintf("%s%d", historyPrefix, conversationID)
}

// ActiveFAQsKey caches the full active FAQ listing, refreshed by the warmup job.
const ActiveFAQsKey = faqPrefix + "active"
