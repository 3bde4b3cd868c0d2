package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/supportchat/chat-api/internal/domain/faq"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/requests"
	"github.com/supportchat/chat-api/internal/interfaces/httpserver/responses"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

// FAQHandler exposes HTTP entrypoints for knowledge-base management.
type FAQHandler struct {
	service FAQService
	log     zerolog.Logger
}

// NewFAQHandler constructs the handler.
func NewFAQHandler(service FAQService, log zerolog.Logger) *FAQHandler {
	return &FAQHandler{
		service: service,
		log:     log.With().Str("handler", "faq").Logger(),
	}
}

// Create handles POST /v1/faqs.
func (h *FAQHandler) Create(c *gin.Context) {
	var req requests.CreateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	entry := &faq.FAQ{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Keywords: req.Keywords,
		Priority: req.Priority,
		IsActive: true,
	}
	if err := h.service.Create(c.Request.Context(), entry); err != nil {
		responses.HandleError(c, err, "failed to create FAQ")
		return
	}

	c.JSON(http.StatusCreated, responses.FromFAQ(entry))
}

// Get handles GET /v1/faqs/:id.
func (h *FAQHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	entry, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to get FAQ")
		return
	}

	c.JSON(http.StatusOK, responses.FromFAQ(entry))
}

// List handles GET /v1/faqs, optionally filtered by category.
func (h *FAQHandler) List(c *gin.Context) {
	var (
		list []faq.FAQ
		err  error
	)
	if category := c.Query("category"); category != "" {
		list, err = h.service.ListByCategory(c.Request.Context(), category)
	} else {
		list, err = h.service.ListActive(c.Request.Context())
	}
	if err != nil {
		responses.HandleError(c, err, "failed to list FAQs")
		return
	}

	c.JSON(http.StatusOK, responses.FromFAQList(list))
}

// Update handles PATCH /v1/faqs/:id.
func (h *FAQHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req requests.UpdateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleBindError(c, err)
		return
	}

	entry, err := h.service.Update(c.Request.Context(), id, faq.Update{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Keywords: req.Keywords,
		Priority: req.Priority,
		IsActive: req.IsActive,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update FAQ")
		return
	}

	c.JSON(http.StatusOK, responses.FromFAQ(entry))
}

// Delete handles DELETE /v1/faqs/:id. Entries are deactivated, not removed.
func (h *FAQHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete FAQ")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.HandleError(c,
			apperrors.New(apperrors.KindValidation, "id must be a positive integer"), "invalid FAQ id")
		return 0, false
	}
	return uint(id), true
}
