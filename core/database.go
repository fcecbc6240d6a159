package core

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"logistics-admin-service/shipments/models"
)

// trackingSequenceSQL installs the per-year sequence behind get_next_tracking_id().
// The function returns NULL once a year passes 999 so callers fall back to reconstruction.
var trackingSequenceSQL = []string{
	`CREATE TABLE IF NOT EXISTS tracking_sequences (
		year       INTEGER PRIMARY KEY,
		last_value INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE OR REPLACE FUNCTION get_next_tracking_id() RETURNS TEXT AS $$
	DECLARE
		y INTEGER := EXTRACT(YEAR FROM CURRENT_DATE)::INTEGER;
		n INTEGER;
	BEGIN
		INSERT INTO tracking_sequences (year, last_value) VALUES (y, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = tracking_sequences.last_value + 1
		RETURNING last_value INTO n;
		IF n > 999 THEN
			RETURN NULL;
		END IF;
		RETURN 'CF24' || y::TEXT || n::TEXT;
	END;
	$$ LANGUAGE plpgsql`,
}

func OpenDatabase(dsn string) (*gorm.DB, error) {
	// Driver errors are left untranslated so unique violations keep their constraint name.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates the shipments table and the tracking sequence procedure.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Shipment{}); err != nil {
		return fmt.Errorf("failed to migrate shipments: %w", err)
	}

	for _, stmt := range trackingSequenceSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to install tracking sequence: %w", err)
		}
	}

	return nil
}
