package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	"github.com/dealhawk/dealhawk-backend/internal/services"
)

type CatalogHandler struct {
	svc services.CatalogService
}

func NewCatalogHandler(svc services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GET /api/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := repos.ProductFilter{
		CategorySlug: c.Query("category"),
		ActiveOnly:   true,
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "24"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	if raw := c.Query("merchant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_merchant_id", err)
			return
		}
		filter.MerchantID = &id
	}
	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_min_price", err)
			return
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_max_price", err)
			return
		}
		filter.MaxPrice = &v
	}

	products, err := h.svc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "products_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"products": products})
}

// GET /api/products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.svc.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "product_not_found", err)
		return
	}
	RespondOK(c, gin.H{"product": product})
}

// GET /api/merchants
func (h *CatalogHandler) ListMerchants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	merchants, err := h.svc.ListMerchants(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "merchants_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"merchants": merchants})
}

// GET /api/merchants/:slug/coupons
func (h *CatalogHandler) MerchantCoupons(c *gin.Context) {
	coupons, err := h.svc.MerchantCoupons(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "merchant_not_found", err)
		return
	}
	RespondOK(c, gin.H{"coupons": coupons})
}

// GET /api/coupons
func (h *CatalogHandler) ListCoupons(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	coupons, err := h.svc.ListCoupons(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "coupons_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"coupons": coupons})
}

// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "categories_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"categories": categories})
}
