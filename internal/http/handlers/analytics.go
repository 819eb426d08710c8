package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealhawk/dealhawk-backend/internal/services"
)

type AnalyticsHandler struct {
	svc services.AnalyticsService
}

func NewAnalyticsHandler(svc services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// GET /api/admin/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "dashboard_unavailable", err)
		return
	}
	RespondOK(c, stats)
}

// POST /api/clickout/:productId
func (h *AnalyticsHandler) Clickout(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}

	url, err := h.svc.RecordClickout(c.Request.Context(), productID, c.ClientIP(), c.Request.Referer())
	if err != nil {
		RespondError(c, http.StatusNotFound, "clickout_failed", err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}
