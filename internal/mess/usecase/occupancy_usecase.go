package usecase

import (
	"time"

	messdomain "campushub-backend/internal/mess/domain"
	"campushub-backend/internal/mess/repository"
)

const (
	totalCapacity = 300
	// Only scans from the last half hour count toward occupancy; diners
	// older than that are assumed to have left.
	occupancyWindow = 30 * time.Minute
)

// OccupancyStatus is the crowd estimate shown on the mess page.
type OccupancyStatus struct {
	MealWindow    string `json:"mealWindow"`
	Occupancy     int64  `json:"occupancy"`
	TotalCapacity int64  `json:"totalCapacity"`
	Color         string `json:"color"`
}

// MessUsecase defines the mess crowd operations
type MessUsecase interface {
	Occupancy() (*OccupancyStatus, error)
	RecordScan(userID string) error
}

// messUsecase implements MessUsecase
type messUsecase struct {
	scanRepo repository.ScanRepository
	now      func() time.Time
}

// NewMessUsecase creates a new instance of messUsecase. now is injectable so
// window classification is testable; pass nil for the wall clock.
func NewMessUsecase(scanRepo repository.ScanRepository, now func() time.Time) MessUsecase {
	if now == nil {
		now = time.Now
	}
	return &messUsecase{
		scanRepo: scanRepo,
		now:      now,
	}
}

func (u *messUsecase) Occupancy() (*OccupancyStatus, error) {
	now := u.now()
	window := messdomain.MealWindowAt(now)

	status := &OccupancyStatus{
		MealWindow:    window,
		TotalCapacity: totalCapacity,
		Color:         "green",
	}
	if window == messdomain.WindowNone {
		return status, nil
	}

	count, err := u.scanRepo.CountSince(window, now.Add(-occupancyWindow))
	if err != nil {
		return nil, err
	}

	status.Occupancy = count
	percent := float64(count) / float64(totalCapacity) * 100
	switch {
	case percent < 40:
		status.Color = "green"
	case percent < 70:
		status.Color = "yellow"
	default:
		status.Color = "red"
	}
	return status, nil
}

func (u *messUsecase) RecordScan(userID string) error {
	now := u.now()
	window := messdomain.MealWindowAt(now)
	if window == messdomain.WindowNone {
		return messdomain.ErrNoActiveMealWindow
	}

	return u.scanRepo.Create(&messdomain.MessScan{
		UserID:     userID,
		MealWindow: window,
		ScannedAt:  now,
	})
}
