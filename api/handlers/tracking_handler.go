package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"logistics-admin-service/shipments/tracking"
)

type TrackingHandler struct {
	service ShipmentService
	logger  *zap.Logger
}

func NewTrackingHandler(service ShipmentService, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{service: service, logger: logger}
}

type validateRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

type validateResult struct {
	TrackingNumber string `json:"trackingNumber"`
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
}

// NextTrackingNumber handles GET /api/admin/tracking-numbers/next
func (h *TrackingHandler) NextTrackingNumber(c *gin.Context) {
	allocation := h.service.NextTrackingNumber(c.Request.Context())
	ok(c, http.StatusOK, allocation, allocation.Warning)
}

// ValidateTrackingNumber handles POST /api/admin/tracking-numbers/validate.
// A rejected number is still a successful request; the verdict is in the body.
func (h *TrackingHandler) ValidateTrackingNumber(c *gin.Context) {
	var req validateRequest
	if !bindJSON(c, &req) {
		return
	}

	result := validateResult{TrackingNumber: strings.TrimSpace(req.TrackingNumber), Valid: true}
	if err := h.service.ValidateTrackingNumber(req.TrackingNumber); err != nil {
		if !errors.Is(err, tracking.ErrInvalid) {
			writeError(c, h.logger, err)
			return
		}
		result.Valid = false
		result.Reason = err.Error()
	}
	ok(c, http.StatusOK, result, "")
}

// Track handles the public GET /api/track/:trackingNumber
func (h *TrackingHandler) Track(c *gin.Context) {
	view, err := h.service.Track(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, view, "")
}
