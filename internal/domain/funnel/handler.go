package funnel

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"funnelwerk/internal/pkg/response"
)

// Handler serves funnel definitions to the rendering frontend.
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/funnels", h.List)
	rg.GET("/funnels/:funnelId", h.GetOne)
}

// Summary is the lightweight listing entry.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TriggerLabel string `json:"trigger_label"`
	StepCount    int    `json:"step_count"`
}

func (h *Handler) List(c *gin.Context) {
	defs := h.registry.List()
	out := make([]Summary, 0, len(defs))
	for _, d := range defs {
		out = append(out, Summary{
			ID:           d.ID,
			Name:         d.Name,
			TriggerLabel: d.TriggerLabel,
			StepCount:    len(d.Steps),
		})
	}
	response.Success(c, http.StatusOK, gin.H{"funnels": out})
}

func (h *Handler) GetOne(c *gin.Context) {
	def, err := h.registry.Get(c.Param("funnelId"))
	if err != nil {
		if errors.Is(err, ErrFunnelNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Funnel not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load funnel")
		return
	}
	response.Success(c, http.StatusOK, def)
}
