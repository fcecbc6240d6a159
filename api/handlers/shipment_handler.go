package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"logistics-admin-service/shipments"
	"logistics-admin-service/shipments/models"
	"logistics-admin-service/shipments/repositories"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// ShipmentHandler serves the admin shipment screens.
type ShipmentHandler struct {
	service ShipmentService
	logger  *zap.Logger
}

func NewShipmentHandler(service ShipmentService, logger *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{service: service, logger: logger}
}

type delayRequest struct {
	Reason string `json:"reason"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type statusRequest struct {
	Status models.ShipmentStatus `json:"status" binding:"required"`
	Reason string                `json:"reason"`
}

// CreateShipment handles POST /api/admin/shipments
func (h *ShipmentHandler) CreateShipment(c *gin.Context) {
	var input shipments.ShipmentInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	message := "Shipment created successfully"
	if result.Regenerated {
		message = "Tracking number was taken; shipment created with " + result.Shipment.TrackingNumber
	}
	ok(c, http.StatusCreated, result, message)
}

// ListShipments handles GET /api/admin/shipments?status=&search=&limit=&offset=
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := repositories.ListFilter{
		Status: models.ShipmentStatus(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  limit,
		Offset: offset,
	}

	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    list,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetShipment handles GET /api/admin/shipments/:id
func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}

	shipment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, shipment, "")
}

// UpdateShipment handles PUT /api/admin/shipments/:id
func (h *ShipmentHandler) UpdateShipment(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}

	var input shipments.ShipmentInput
	if !bindJSON(c, &input) {
		return
	}

	shipment, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, shipment, "Shipment updated successfully")
}

// DeleteShipment handles DELETE /api/admin/shipments/:id
func (h *ShipmentHandler) DeleteShipment(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, nil, "Shipment deleted successfully")
}

// MarkDelayed handles POST /api/admin/shipments/:id/delay
func (h *ShipmentHandler) MarkDelayed(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}

	var req delayRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.service.MarkDelayed(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, shipment, "Shipment marked as delayed")
}

// MarkDelivered handles POST /api/admin/shipments/:id/deliver. The body is optional.
func (h *ShipmentHandler) MarkDelivered(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}

	var req dateRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	date, err := shipments.ParseDate(req.Date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	shipment, err := h.service.MarkDelivered(c.Request.Context(), id, date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, shipment, "Shipment marked as delivered")
}

// UpdateDeliveryDate handles PUT /api/admin/shipments/:id/delivery-date
func (h *ShipmentHandler) UpdateDeliveryDate(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}

	var req dateRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := shipments.ParseDate(req.Date)
	if err == nil && date == nil {
		err = fmt.Errorf("%w: a delivery date is required", shipments.ErrInvalidInput)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	shipment, err := h.service.UpdateDeliveryDate(c.Request.Context(), id, *date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, shipment, "Delivery date updated")
}

// UpdateStatus handles PUT /api/admin/shipments/:id/status
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status, req.Reason)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, shipment, "Shipment status updated")
}
