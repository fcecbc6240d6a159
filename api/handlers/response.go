package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"logistics-admin-service/shipments"
	"logistics-admin-service/shipments/tracking"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message *string     `json:"message,omitempty"`
}

// ListResponse represents a paginated list
type ListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

func ok(c *gin.Context, status int, data interface{}, message string) {
	resp := SuccessResponse{Success: true, Data: data}
	if message != "" {
		resp.Message = &message
	}
	c.JSON(status, resp)
}

func fail(c *gin.Context, status int, errorText, message string) {
	c.JSON(status, ErrorResponse{Error: errorText, Message: message})
}

// writeError maps service errors onto status codes. Unknown errors are logged and hidden.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, shipments.ErrShipmentNotFound):
		fail(c, http.StatusNotFound, "Shipment not found", err.Error())
	case errors.Is(err, shipments.ErrInvalidInput), errors.Is(err, tracking.ErrInvalid):
		fail(c, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	case errors.Is(err, shipments.ErrTrackingNumberConflict), errors.Is(err, shipments.ErrTrackingNumberImmutable):
		fail(c, http.StatusConflict, "Tracking number conflict", err.Error())
	default:
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		fail(c, http.StatusInternalServerError, "Internal error", "Something went wrong, please try again")
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid shipment ID", "Shipment ID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}
