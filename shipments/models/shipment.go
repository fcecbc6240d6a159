package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Shipment represents the shipments table
type Shipment struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TrackingNumber string         `json:"trackingNumber" gorm:"size:16;not null;uniqueIndex:idx_shipments_tracking_number"`
	Status         ShipmentStatus `json:"status" gorm:"size:32;not null;index"`

	CustomerName  string `json:"customerName" gorm:"size:255;not null"`
	CustomerEmail string `json:"customerEmail" gorm:"size:255"`
	CustomerPhone string `json:"customerPhone" gorm:"size:50"`

	OriginState        string `json:"originState" gorm:"size:100"`
	DestinationState   string `json:"destinationState" gorm:"size:100"`
	OriginAddress      string `json:"originAddress" gorm:"size:500"`
	DestinationAddress string `json:"destinationAddress" gorm:"size:500"`

	ScheduledPickup   *time.Time `json:"scheduledPickup" gorm:"type:date"`
	ScheduledDelivery *time.Time `json:"scheduledDelivery" gorm:"type:date"`
	ActualDelivery    *time.Time `json:"actualDelivery" gorm:"type:date"`
	EstimatedDays     int        `json:"estimatedDays" gorm:"not null;default:1"`

	DelayReason string `json:"delayReason,omitempty" gorm:"type:text"`
	Notes       string `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

const day = 24 * time.Hour

// EstimatedDays is the whole number of days between pickup and delivery, never below one.
func EstimatedDays(pickup, delivery *time.Time) int {
	if pickup == nil || delivery == nil {
		return 1
	}

	days := int(math.Ceil(float64(delivery.Sub(*pickup)) / float64(day)))
	if days < 1 {
		return 1
	}
	return days
}

// RecomputeEstimatedDays refreshes EstimatedDays from the scheduled dates.
func (s *Shipment) RecomputeEstimatedDays() {
	s.EstimatedDays = EstimatedDays(s.ScheduledPickup, s.ScheduledDelivery)
}

// SetStatus moves the shipment to status, dropping the delay reason once it is no longer
// delayed and the delivery date once it is no longer delivered.
func (s *Shipment) SetStatus(status ShipmentStatus) {
	s.Status = status
	if status != StatusDelayed {
		s.DelayReason = ""
	}
	if status != StatusDelivered {
		s.ActualDelivery = nil
	}
}
