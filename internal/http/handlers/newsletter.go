package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealhawk/dealhawk-backend/internal/services"
)

type NewsletterHandler struct {
	svc services.NewsletterService
}

func NewNewsletterHandler(svc services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{svc: svc}
}

type subscribeRequest struct {
	Email  string `json:"email" binding:"required"`
	Source string `json:"source"`
}

// POST /api/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	subscriber, err := h.svc.Subscribe(c.Request.Context(), req.Email, req.Source)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "subscribe_failed", err)
		return
	}
	RespondOK(c, gin.H{"subscriber": subscriber})
}

type unsubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

// POST /api/newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.svc.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		RespondError(c, http.StatusBadRequest, "unsubscribe_failed", err)
		return
	}
	RespondOK(c, gin.H{"unsubscribed": true})
}

// POST /api/admin/newsletter/digest
func (h *NewsletterHandler) SendDigest(c *gin.Context) {
	result, err := h.svc.SendDigest(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "digest_failed", err)
		return
	}
	RespondOK(c, result)
}
