package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/services"
)

// AdminCatalogHandler is the back-office CRUD surface. Listing goes through
// the public catalog service so admins see what the site serves.
type AdminCatalogHandler struct {
	svc     services.AdminCatalogService
	catalog services.CatalogService
}

func NewAdminCatalogHandler(svc services.AdminCatalogService, catalog services.CatalogService) *AdminCatalogHandler {
	return &AdminCatalogHandler{svc: svc, catalog: catalog}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func bindUpdates(c *gin.Context) (map[string]interface{}, bool) {
	updates := map[string]interface{}{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	delete(updates, "id")
	delete(updates, "created_at")
	return updates, true
}

// GET /api/admin/merchants
func (h *AdminCatalogHandler) ListMerchants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	merchants, err := h.catalog.ListMerchants(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "merchants_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"merchants": merchants})
}

// GET /api/admin/products. Unlike the public listing this includes
// deactivated rows so admins can re-enable them.
func (h *AdminCatalogHandler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := h.catalog.ListProducts(c.Request.Context(), repos.ProductFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "products_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"products": products})
}

// GET /api/admin/coupons
func (h *AdminCatalogHandler) ListCoupons(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	coupons, err := h.catalog.ListCoupons(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "coupons_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"coupons": coupons})
}

// POST /api/admin/merchants
func (h *AdminCatalogHandler) CreateMerchant(c *gin.Context) {
	var merchant types.Merchant
	if err := c.ShouldBindJSON(&merchant); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_merchant", err)
		return
	}
	created, err := h.svc.CreateMerchant(c.Request.Context(), &merchant)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "merchant_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"merchant": created})
}

// PATCH /api/admin/merchants/:id
func (h *AdminCatalogHandler) UpdateMerchant(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	updates, ok := bindUpdates(c)
	if !ok {
		return
	}
	if err := h.svc.UpdateMerchant(c.Request.Context(), id, updates); err != nil {
		RespondError(c, http.StatusBadRequest, "merchant_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

// DELETE /api/admin/merchants/:id
func (h *AdminCatalogHandler) DeleteMerchant(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteMerchant(c.Request.Context(), id); err != nil {
		RespondError(c, http.StatusInternalServerError, "merchant_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// POST /api/admin/products
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var product types.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product", err)
		return
	}
	created, err := h.svc.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "product_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": created})
}

// PATCH /api/admin/products/:id
func (h *AdminCatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	updates, ok := bindUpdates(c)
	if !ok {
		return
	}
	if err := h.svc.UpdateProduct(c.Request.Context(), id, updates); err != nil {
		RespondError(c, http.StatusBadRequest, "product_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

// DELETE /api/admin/products/:id
func (h *AdminCatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		RespondError(c, http.StatusInternalServerError, "product_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// POST /api/admin/coupons
func (h *AdminCatalogHandler) CreateCoupon(c *gin.Context) {
	var coupon types.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_coupon", err)
		return
	}
	created, err := h.svc.CreateCoupon(c.Request.Context(), &coupon)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "coupon_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coupon": created})
}

// PATCH /api/admin/coupons/:id
func (h *AdminCatalogHandler) UpdateCoupon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	updates, ok := bindUpdates(c)
	if !ok {
		return
	}
	if err := h.svc.UpdateCoupon(c.Request.Context(), id, updates); err != nil {
		RespondError(c, http.StatusBadRequest, "coupon_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

// POST /api/admin/coupons/:id/verify
func (h *AdminCatalogHandler) VerifyCoupon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.VerifyCoupon(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			RespondError(c, http.StatusNotFound, "coupon_not_found", err)
			return
		}
		RespondError(c, http.StatusBadGateway, "coupon_verify_failed", err)
		return
	}
	RespondOK(c, result)
}

// DELETE /api/admin/coupons/:id
func (h *AdminCatalogHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteCoupon(c.Request.Context(), id); err != nil {
		RespondError(c, http.StatusInternalServerError, "coupon_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
