package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/slug"
	"github.com/dealhawk/dealhawk-backend/internal/services"
)

type NetworkHandler struct {
	svc services.AffiliateService
}

func NewNetworkHandler(svc services.AffiliateService) *NetworkHandler {
	return &NetworkHandler{svc: svc}
}

type createNetworkRequest struct {
	Name       string `json:"name" binding:"required"`
	Kind       string `json:"kind" binding:"required"`
	BaseURL    string `json:"base_url"`
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
	TrackingID string `json:"tracking_id"`
}

// POST /api/admin/networks
func (h *NetworkHandler) Create(c *gin.Context) {
	var req createNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_network", err)
		return
	}

	network := &types.AffiliateNetwork{
		Name:       strings.TrimSpace(req.Name),
		Slug:       slug.Make(req.Name),
		Kind:       strings.ToLower(strings.TrimSpace(req.Kind)),
		BaseURL:    strings.TrimSpace(req.BaseURL),
		APIKey:     req.APIKey,
		APISecret:  req.APISecret,
		TrackingID: req.TrackingID,
		Status:     types.NetworkStatusPending,
	}
	created, err := h.svc.CreateNetwork(c.Request.Context(), network)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "network_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"network": created})
}

// GET /api/admin/networks
func (h *NetworkHandler) List(c *gin.Context) {
	networks, err := h.svc.ListNetworks(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "networks_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"networks": networks})
}

// POST /api/admin/networks/:id/test
func (h *NetworkHandler) Test(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_network_id", err)
		return
	}

	result, err := h.svc.TestConnection(c.Request.Context(), id)
	if err != nil && result == nil {
		RespondError(c, http.StatusBadGateway, "connection_test_failed", err)
		return
	}
	RespondOK(c, result)
}

// GET /api/admin/networks/:id/coupons
// Preview of what a network currently lists, optionally narrowed to one
// merchant name. Nothing is persisted.
func (h *NetworkHandler) Coupons(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_network_id", err)
		return
	}

	offers, err := h.svc.FetchCoupons(c.Request.Context(), id, c.Query("merchant"))
	if err != nil {
		RespondError(c, http.StatusBadGateway, "coupon_fetch_failed", err)
		return
	}
	RespondOK(c, gin.H{"coupons": offers})
}

// POST /api/admin/networks/test-all
func (h *NetworkHandler) TestAll(c *gin.Context) {
	results, err := h.svc.TestAllConnections(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "connection_sweep_failed", err)
		return
	}
	RespondOK(c, gin.H{"results": results})
}
