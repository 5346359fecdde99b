package usecase

import (
	"errors"
	"testing"
	"time"

	messdomain "campushub-backend/internal/mess/domain"
)

// memScanRepo is an in-memory ScanRepository
type memScanRepo struct {
	scans []messdomain.MessScan
}

func (r *memScanRepo) Create(scan *messdomain.MessScan) error {
	r.scans = append(r.scans, *scan)
	return nil
}

func (r *memScanRepo) CountSince(mealWindow string, cutoff time.Time) (int64, error) {
	var count int64
	for _, s := range r.scans {
		if s.MealWindow == mealWindow && !s.ScannedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.Local)
}

func TestMealWindowAt(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{6, messdomain.WindowNone},
		{7, messdomain.WindowBreakfast},
		{8, messdomain.WindowBreakfast},
		{9, messdomain.WindowNone},
		{12, messdomain.WindowLunch},
		{13, messdomain.WindowLunch},
		{14, messdomain.WindowNone},
		{19, messdomain.WindowDinner},
		{20, messdomain.WindowDinner},
		{21, messdomain.WindowNone},
		{23, messdomain.WindowNone},
	}
	for _, c := range cases {
		if got := messdomain.MealWindowAt(at(c.hour, 30)); got != c.want {
			t.Errorf("MealWindowAt(hour=%d) = %q, want %q", c.hour, got, c.want)
		}
	}
}

func TestRecordScan_OutsideWindowRejected(t *testing.T) {
	repo := &memScanRepo{}
	uc := NewMessUsecase(repo, fixedClock(at(10, 0)))

	err := uc.RecordScan("u1")
	if !errors.Is(err, messdomain.ErrNoActiveMealWindow) {
		t.Errorf("Expected ErrNoActiveMealWindow, got %v", err)
	}
	if len(repo.scans) != 0 {
		t.Errorf("Expected no scan recorded, got %d", len(repo.scans))
	}
}

func TestRecordScan_TagsActiveWindow(t *testing.T) {
	repo := &memScanRepo{}
	uc := NewMessUsecase(repo, fixedClock(at(12, 30)))

	if err := uc.RecordScan("u1"); err != nil {
		t.Fatalf("RecordScan failed: %v", err)
	}
	if len(repo.scans) != 1 || repo.scans[0].MealWindow != messdomain.WindowLunch {
		t.Errorf("Expected one lunch scan, got %+v", repo.scans)
	}
}

func TestOccupancy_OutsideWindow(t *testing.T) {
	repo := &memScanRepo{}
	uc := NewMessUsecase(repo, fixedClock(at(16, 0)))

	status, err := uc.Occupancy()
	if err != nil {
		t.Fatalf("Occupancy failed: %v", err)
	}
	if status.MealWindow != messdomain.WindowNone || status.Occupancy != 0 || status.Color != "green" {
		t.Errorf("Expected idle status outside windows, got %+v", status)
	}
}

func TestOccupancy_ColorThresholds(t *testing.T) {
	cases := []struct {
		scans int
		want  string
	}{
		{0, "green"},
		{119, "green"},  // 39.7%
		{120, "yellow"}, // 40%
		{209, "yellow"}, // 69.7%
		{210, "red"},    // 70%
		{300, "red"},
	}

	for _, c := range cases {
		repo := &memScanRepo{}
		now := at(12, 30)
		uc := NewMessUsecase(repo, fixedClock(now))

		for i := 0; i < c.scans; i++ {
			repo.scans = append(repo.scans, messdomain.MessScan{
				UserID:     "u",
				MealWindow: messdomain.WindowLunch,
				ScannedAt:  now.Add(-5 * time.Minute),
			})
		}

		status, err := uc.Occupancy()
		if err != nil {
			t.Fatalf("Occupancy failed: %v", err)
		}
		if status.Color != c.want {
			t.Errorf("With %d scans expected color %q, got %q", c.scans, c.want, status.Color)
		}
		if status.Occupancy != int64(c.scans) {
			t.Errorf("With %d scans expected occupancy %d, got %d", c.scans, c.scans, status.Occupancy)
		}
	}
}

func TestOccupancy_IgnoresStaleScans(t *testing.T) {
	repo := &memScanRepo{}
	now := at(13, 0)
	uc := NewMessUsecase(repo, fixedClock(now))

	repo.scans = append(repo.scans,
		messdomain.MessScan{UserID: "u1", MealWindow: messdomain.WindowLunch, ScannedAt: now.Add(-45 * time.Minute)},
		messdomain.MessScan{UserID: "u2", MealWindow: messdomain.WindowLunch, ScannedAt: now.Add(-10 * time.Minute)},
		messdomain.MessScan{UserID: "u3", MealWindow: messdomain.WindowBreakfast, ScannedAt: now.Add(-10 * time.Minute)},
	)

	status, err := uc.Occupancy()
	if err != nil {
		t.Fatalf("Occupancy failed: %v", err)
	}
	if status.Occupancy != 1 {
		t.Errorf("Expected only the recent lunch scan counted, got %d", status.Occupancy)
	}
}
