package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"funnelwerk/internal/domain/funnel"
	"funnelwerk/internal/domain/lead"
	"funnelwerk/internal/pkg/response"
)

// Handler exposes the public funnel walk-through API.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the session endpoints under a funnel.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/funnels/:funnelId/sessions", h.Start)
	rg.GET("/funnels/:funnelId/sessions/:token", h.Get)
	rg.DELETE("/funnels/:funnelId/sessions/:token", h.Drop)
	rg.POST("/funnels/:funnelId/sessions/:token/answers/single", h.SelectSingle)
	rg.POST("/funnels/:funnelId/sessions/:token/answers/multi", h.ToggleMulti)
	rg.POST("/funnels/:funnelId/sessions/:token/answers/text", h.SetText)
	rg.POST("/funnels/:funnelId/sessions/:token/consent", h.SetConsent)
	rg.POST("/funnels/:funnelId/sessions/:token/next", h.Next)
	rg.POST("/funnels/:funnelId/sessions/:token/back", h.Back)
	rg.POST("/funnels/:funnelId/sessions/:token/skip", h.Skip)
	rg.POST("/funnels/:funnelId/sessions/:token/submit", h.Submit)
}

func (h *Handler) Start(c *gin.Context) {
	var req StartRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	sess, def, err := h.service.Start(c.Param("funnelId"), c.Request.UserAgent(), req.Referrer)
	if err != nil {
		h.writeError(c, nil, err)
		return
	}

	response.Success(c, http.StatusCreated, NewStateResponse(def, sess))
}

func (h *Handler) Get(c *gin.Context) {
	sess, def, err := h.service.Get(c.Request.Context(), c.Param("funnelId"), c.Param("token"))
	if err != nil {
		h.writeError(c, nil, err)
		return
	}
	response.Success(c, http.StatusOK, NewStateResponse(def, sess))
}

func (h *Handler) Drop(c *gin.Context) {
	if err := h.service.Drop(c.Request.Context(), c.Param("funnelId"), c.Param("token")); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to discard session")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"discarded": true})
}

func (h *Handler) SelectSingle(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sess, err := h.service.SelectSingle(c.Request.Context(), c.Param("funnelId"), c.Param("token"), req.Field, req.OptionID)
	h.writeState(c, sess, err)
}

func (h *Handler) ToggleMulti(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sess, err := h.service.ToggleMulti(c.Request.Context(), c.Param("funnelId"), c.Param("token"), req.Field, req.OptionID)
	h.writeState(c, sess, err)
}

func (h *Handler) SetText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sess, err := h.service.SetText(c.Request.Context(), c.Param("funnelId"), c.Param("token"), req.Field, req.Value)
	h.writeState(c, sess, err)
}

func (h *Handler) SetConsent(c *gin.Context) {
	var req ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sess, err := h.service.SetConsent(c.Request.Context(), c.Param("funnelId"), c.Param("token"), req.Consent)
	h.writeState(c, sess, err)
}

func (h *Handler) Next(c *gin.Context) {
	res, err := h.service.Next(c.Request.Context(), c.Param("funnelId"), c.Param("token"))
	h.writeResult(c, res, err)
}

func (h *Handler) Back(c *gin.Context) {
	sess, err := h.service.Back(c.Request.Context(), c.Param("funnelId"), c.Param("token"))
	h.writeState(c, sess, err)
}

func (h *Handler) Skip(c *gin.Context) {
	res, err := h.service.Skip(c.Request.Context(), c.Param("funnelId"), c.Param("token"))
	h.writeResult(c, res, err)
}

func (h *Handler) Submit(c *gin.Context) {
	res, err := h.service.Submit(c.Request.Context(), c.Param("funnelId"), c.Param("token"))
	h.writeResult(c, res, err)
}

func (h *Handler) writeState(c *gin.Context, sess *Session, err error) {
	if err != nil {
		h.writeError(c, sess, err)
		return
	}

	def, derr := h.service.registry.Get(sess.FunnelID)
	if derr != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Funnel definition missing")
		return
	}
	response.Success(c, http.StatusOK, NewStateResponse(def, sess))
}

func (h *Handler) writeResult(c *gin.Context, res *Result, err error) {
	if err != nil {
		// Dispatch failure keeps the session alive on its last step; the
		// state (including the submit error message) is what the UI needs.
		if errors.Is(err, ErrDispatchFailed) {
			response.Error(c, http.StatusBadGateway, "SUBMIT_FAILED", "Lead submission failed, please retry")
			return
		}
		h.writeError(c, nil, err)
		return
	}

	h.writeState(c, res.Session, nil)
}

func (h *Handler) writeError(c *gin.Context, sess *Session, err error) {
	switch {
	case errors.Is(err, funnel.ErrFunnelNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Funnel not found")
	case errors.Is(err, ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Session not found")
	case errors.Is(err, ErrFunnelMismatch):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Session does not belong to this funnel")
	case errors.Is(err, ErrSessionComplete):
		response.Error(c, http.StatusConflict, "SESSION_COMPLETE", "Session is already complete")
	case errors.Is(err, ErrSubmitInFlight):
		response.Error(c, http.StatusConflict, "SUBMIT_IN_FLIGHT", "Submission already in progress")
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrUnknownOption),
		errors.Is(err, ErrWrongStepType), errors.Is(err, ErrQuestionHidden):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrStepIncomplete):
		response.Error(c, http.StatusUnprocessableEntity, "STEP_INCOMPLETE", "Current step is incomplete")
	case errors.Is(err, ErrStepInvalid):
		response.Error(c, http.StatusUnprocessableEntity, "STEP_INVALID", "Current step failed validation")
	case errors.Is(err, ErrNotOptionalStep):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Current step cannot be skipped")
	case errors.Is(err, ErrAlreadyFirstStep):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Already on the first step")
	case errors.Is(err, lead.ErrDuplicateSubmission):
		response.Error(c, http.StatusConflict, "DUPLICATE_SUBMISSION", "This session was already submitted")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
