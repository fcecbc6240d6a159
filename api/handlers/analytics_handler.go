package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultMonths = 6
	maxMonths     = 24
)

type AnalyticsHandler struct {
	service ShipmentService
	logger  *zap.Logger
}

func NewAnalyticsHandler(service ShipmentService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// GetAnalytics handles GET /api/admin/analytics?months=
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	months, err := strconv.Atoi(c.DefaultQuery("months", strconv.Itoa(defaultMonths)))
	if err != nil || months < 1 {
		months = defaultMonths
	}
	if months > maxMonths {
		months = maxMonths
	}

	report, err := h.service.Analytics(c.Request.Context(), months)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, report, "")
}
