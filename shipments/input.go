package shipments

import (
	"fmt"
	"strings"
	"time"

	"logistics-admin-service/shipments/models"
)

// DateLayout is how calendar dates travel over the API.
const DateLayout = "2006-01-02"

// ShipmentInput is the admin form. Dates are calendar dates in DateLayout.
type ShipmentInput struct {
	TrackingNumber     string                `json:"trackingNumber"`
	Status             models.ShipmentStatus `json:"status"`
	CustomerName       string                `json:"customerName"`
	CustomerEmail      string                `json:"customerEmail"`
	CustomerPhone      string                `json:"customerPhone"`
	OriginState        string                `json:"originState"`
	DestinationState   string                `json:"destinationState"`
	OriginAddress      string                `json:"originAddress"`
	DestinationAddress string                `json:"destinationAddress"`
	ScheduledPickup    string                `json:"scheduledPickup"`
	ScheduledDelivery  string                `json:"scheduledDelivery"`
	DelayReason        string                `json:"delayReason"`
	Notes              string                `json:"notes"`
}

// ParseDate reads a calendar date; the empty string is no date.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, value)
	}
	return &t, nil
}

// apply copies the form onto shipment, leaving the tracking number alone. An empty
// status keeps the shipment's current one; new shipments start at Pickup Pending.
func (in ShipmentInput) apply(shipment *models.Shipment) error {
	status := in.Status
	if status == "" {
		status = shipment.Status
	}
	if status == "" {
		status = models.StatusPickupPending
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	pickup, err := ParseDate(in.ScheduledPickup)
	if err != nil {
		return err
	}
	delivery, err := ParseDate(in.ScheduledDelivery)
	if err != nil {
		return err
	}

	reason := strings.TrimSpace(in.DelayReason)
	if reason == "" && shipment.Status == models.StatusDelayed {
		reason = shipment.DelayReason
	}
	if status == models.StatusDelayed && reason == "" {
		return fmt.Errorf("%w: a delay reason is required for delayed shipments", ErrInvalidInput)
	}

	datesChanged := !sameDate(shipment.ScheduledPickup, pickup) || !sameDate(shipment.ScheduledDelivery, delivery)

	shipment.CustomerName = name
	shipment.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	shipment.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	shipment.OriginState = strings.TrimSpace(in.OriginState)
	shipment.DestinationState = strings.TrimSpace(in.DestinationState)
	shipment.OriginAddress = strings.TrimSpace(in.OriginAddress)
	shipment.DestinationAddress = strings.TrimSpace(in.DestinationAddress)
	shipment.ScheduledPickup = pickup
	shipment.ScheduledDelivery = delivery
	shipment.Notes = in.Notes
	shipment.SetStatus(status)
	if status == models.StatusDelayed {
		shipment.DelayReason = reason
	}

	if datesChanged || shipment.EstimatedDays < 1 {
		shipment.RecomputeEstimatedDays()
	}
	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Format(DateLayout) == b.Format(DateLayout)
}
