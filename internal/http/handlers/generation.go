package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dealhawk/dealhawk-backend/internal/services"
)

type GenerationHandler struct {
	svc services.GeneratorService
}

func NewGenerationHandler(svc services.GeneratorService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// GET /api/admin/generation/status
func (h *GenerationHandler) Status(c *gin.Context) {
	RespondOK(c, h.svc.Status())
}

// POST /api/admin/generation/run
func (h *GenerationHandler) Run(c *gin.Context) {
	var cfg *services.GenerationConfig
	if c.Request.ContentLength > 0 {
		cfg = &services.GenerationConfig{}
		if err := c.ShouldBindJSON(cfg); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_config", err)
			return
		}
	}

	result, err := h.svc.Run(c.Request.Context(), cfg)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyRunning) {
			RespondError(c, http.StatusConflict, "already_running", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
		return
	}
	RespondOK(c, result)
}

// GET /api/admin/generation/logs
func (h *GenerationHandler) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.svc.Logs(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "logs_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"logs": logs})
}
