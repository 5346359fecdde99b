package repository

import (
	"time"

	messdomain "campushub-backend/internal/mess/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanRepository persists mess entrance scans
type ScanRepository interface {
	Create(scan *messdomain.MessScan) error
	// CountSince counts scans for a meal window recorded at or after cutoff.
	CountSince(mealWindow string, cutoff time.Time) (int64, error)
}

// scanRepository implements ScanRepository
type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository creates a new instance of scanRepository
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{
		db: db,
	}
}

func (r *scanRepository) Create(scan *messdomain.MessScan) error {
	scan.ID = uuid.New().String()
	scan.CreatedAt = time.Now()
	return r.db.Create(scan).Error
}

func (r *scanRepository) CountSince(mealWindow string, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&messdomain.MessScan{}).
		Where("meal_window = ? AND scanned_at >= ?", mealWindow, cutoff).
		Count(&count).Error
	return count, err
}
