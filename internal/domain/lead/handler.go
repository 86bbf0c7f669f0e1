package lead

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"funnelwerk/internal/pkg/response"
	"funnelwerk/internal/pkg/validator"
)

// Handler exposes the admin follow-up surface and the internal export.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts the JWT-protected admin endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.List)
	rg.GET("/leads/stats", h.Stats)
	rg.GET("/leads/:id", h.GetOne)
	rg.PATCH("/leads/:id/status", h.UpdateStatus)
}

// RegisterInternalRoutes mounts the token-protected sync export.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/export", h.Export)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *Status
	if raw := c.Query("status"); raw != "" {
		s := Status(raw)
		status = &s
	}

	leads, total, err := h.service.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list leads")
		return
	}

	response.Success(c, http.StatusOK, ListResponse{Leads: leads, Total: total})
}

func (h *Handler) GetOne(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}

	sub, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load lead")
		return
	}

	response.Success(c, http.StatusOK, sub)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fieldErrs := validator.Validate(req); fieldErrs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid status update", fieldErrs)
		return
	}

	err = h.service.UpdateStatus(c.Request.Context(), id, req.Status, req.Notes)
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrAlreadyConverted):
		response.Error(c, http.StatusConflict, "LEAD_CONVERTED", "Converted leads cannot change status")
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update lead")
	default:
		response.Success(c, http.StatusOK, gin.H{"id": id, "status": req.Status})
	}
}

func (h *Handler) Stats(c *gin.Context) {
	byStatus, byClass, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load stats")
		return
	}
	response.Success(c, http.StatusOK, StatsResponse{ByStatus: byStatus, ByClassification: byClass})
}

func (h *Handler) Export(c *gin.Context) {
	leads, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export leads")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leads": leads, "count": len(leads)})
}
