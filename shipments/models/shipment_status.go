package models

type ShipmentStatus string

const (
	StatusPickupPending  ShipmentStatus = "Pickup Pending"
	StatusPickupComplete ShipmentStatus = "Pick-up-complete"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "Out for Delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusDelayed        ShipmentStatus = "delayed"
	StatusCancelled      ShipmentStatus = "cancelled"
)

// Statuses lists every status a shipment may be written with, in lifecycle order.
var Statuses = []ShipmentStatus{
	StatusPickupPending,
	StatusPickupComplete,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusDelayed,
	StatusCancelled,
}

func (s ShipmentStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s ShipmentStatus) String() string {
	return string(s)
}
