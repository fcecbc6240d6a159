package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"logistics-admin-service/shipments"
	"logistics-admin-service/shipments/analytics"
	"logistics-admin-service/shipments/models"
	"logistics-admin-service/shipments/repositories"
	"logistics-admin-service/shipments/tracking"
)

// ShipmentService is what the handlers need from shipments.Service.
type ShipmentService interface {
	NextTrackingNumber(ctx context.Context) tracking.Allocation
	ValidateTrackingNumber(candidate string) error
	Create(ctx context.Context, input shipments.ShipmentInput) (*shipments.CreateResult, error)
	Update(ctx context.Context, id uuid.UUID, input shipments.ShipmentInput) (*models.Shipment, error)
	MarkDelayed(ctx context.Context, id uuid.UUID, reason string) (*models.Shipment, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, date *time.Time) (*models.Shipment, error)
	UpdateDeliveryDate(ctx context.Context, id uuid.UUID, date time.Time) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ShipmentStatus, reason string) (*models.Shipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]models.Shipment, int64, error)
	Track(ctx context.Context, trackingNumber string) (*shipments.TrackingView, error)
	Analytics(ctx context.Context, months int) (*analytics.Report, error)
}

var _ ShipmentService = (*shipments.Service)(nil)
