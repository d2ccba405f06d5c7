package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	groups *usecase.GroupingService
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil service makes the grouping
// endpoints answer 503.
func NewHandler(groups *usecase.GroupingService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		groups: groups,
		logger: logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealdesk-backend",
		"version": "1.0.0",
	})
}

// GroupProducts handles POST /api/v1/product-groups
func (h *Handler) GroupProducts(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req domain.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.groups.GroupProducts(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GroupDeal handles GET /api/v1/deals/:dealId/product-groups
func (h *Handler) GroupDeal(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var threshold *float64
	if raw := c.Query("threshold"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number"})
			return
		}
		threshold = &value
	}

	opts, err := h.groups.ResolveOptions(
		threshold,
		domain.GroupingMode(c.Query("mode")),
		domain.EmptyNamePolicy(c.Query("empty_names")),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.groups.GroupDeal(c.Request.Context(), c.Param("dealId"), opts, c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConfirmSelection handles POST /api/v1/product-groups/confirm
func (h *Handler) ConfirmSelection(c *gin.Context) {
	var req domain.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	confirmed, err := usecase.ConfirmSelection(req.Groups, req.Selection)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, confirmed)
}

// Compare handles POST /api/v1/similarity
func (h *Handler) Compare(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req domain.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	comparison, err := h.groups.Compare(req.A, req.B, req.Threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.groups == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "grouping service not configured"})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidThreshold):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDealNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIncompleteSelection), errors.Is(err, domain.ErrUnknownLineItem):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrDealSourceFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrDealSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
