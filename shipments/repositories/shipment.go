package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"logistics-admin-service/shipments/models"
)

var (
	ErrNotFound                = errors.New("shipment not found")
	ErrDuplicateTrackingNumber = errors.New("tracking number already exists")
)

const uniqueViolation = "23505"

// likeEscaper makes search input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ListFilter narrows a shipment listing. Zero values mean no filtering.
type ListFilter struct {
	Status models.ShipmentStatus
	Search string
	Limit  int
	Offset int
}

// ShipmentRepository is the repo for accessing shipments
type ShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository creates a new repository with DB dependency
func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// Create inserts a shipment, reporting tracking number collisions as ErrDuplicateTrackingNumber
func (r *ShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	if shipment.ID == uuid.Nil {
		shipment.ID = uuid.New()
	}

	err := r.db.WithContext(ctx).Create(shipment).Error
	if IsUniqueViolation(err) {
		return errors.Join(ErrDuplicateTrackingNumber, err)
	}
	return err
}

// Save updates every column of an existing shipment
func (r *ShipmentRepository) Save(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Save(shipment).Error
}

// Delete removes the shipment row entirely
func (r *ShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Shipment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shipment).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &shipment, nil
}

func (r *ShipmentRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&shipment).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &shipment, nil
}

// List returns a page of shipments, newest first, with the total matching count
func (r *ShipmentRepository) List(ctx context.Context, filter ListFilter) ([]models.Shipment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Shipment{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := r.db.WithContext(ctx).Scopes(filter.scope).Order("created_at DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}

	var shipments []models.Shipment
	if err := page.Find(&shipments).Error; err != nil {
		return nil, 0, err
	}

	return shipments, total, nil
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		db = db.Where(`LOWER(tracking_number) LIKE ? ESCAPE '\' OR LOWER(customer_name) LIKE ? ESCAPE '\'`, like, like)
	}
	return db
}

// IsUniqueViolation reports whether err is the storage rejecting a duplicate tracking number.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName, "tracking_number")
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key") && strings.Contains(msg, "tracking_number")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
