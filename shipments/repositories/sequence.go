package repositories

import (
	"context"

	"gorm.io/gorm"
	"logistics-admin-service/shipments/models"
)

// SequenceRepository reads what the tracking number allocator needs from storage.
type SequenceRepository struct {
	db         *gorm.DB
	rpcEnabled bool
}

func NewSequenceRepository(db *gorm.DB, rpcEnabled bool) *SequenceRepository {
	return &SequenceRepository{db: db, rpcEnabled: rpcEnabled}
}

// NextTrackingID calls get_next_tracking_id(). It returns "" when the procedure is
// disabled for this deployment or hands back NULL.
func (r *SequenceRepository) NextTrackingID(ctx context.Context) (string, error) {
	if !r.rpcEnabled {
		return "", nil
	}

	var row struct {
		TrackingNumber *string `gorm:"column:tracking_number"`
	}
	err := r.db.WithContext(ctx).
		Raw("SELECT get_next_tracking_id() AS tracking_number").
		Scan(&row).Error
	if err != nil {
		return "", err
	}

	if row.TrackingNumber == nil {
		return "", nil
	}
	return *row.TrackingNumber, nil
}

// TrackingNumbersWithPrefix scans every tracking number starting with prefix.
// Yearly volume is capped at 999 so the scan stays small.
func (r *SequenceRepository) TrackingNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("tracking_number LIKE ?", prefix+"%").
		Pluck("tracking_number", &numbers).Error
	return numbers, err
}
