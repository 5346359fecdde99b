package repository

import (
	"time"

	gmaildomain "campushub-backend/internal/gmail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// watchedSenderRepository implements WatchedSenderRepository
type watchedSenderRepository struct {
	db *gorm.DB
}

// NewWatchedSenderRepository creates a new instance of watchedSenderRepository
func NewWatchedSenderRepository(db *gorm.DB) WatchedSenderRepository {
	return &watchedSenderRepository{
		db: db,
	}
}

func (r *watchedSenderRepository) Create(sender *gmaildomain.WatchedSender) error {
	sender.ID = uuid.New().String()
	sender.CreatedAt = time.Now()
	return r.db.Create(sender).Error
}

func (r *watchedSenderRepository) ListByUserID(userID string) ([]gmaildomain.WatchedSender, error) {
	var senders []gmaildomain.WatchedSender
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&senders).Error
	if err != nil {
		return nil, err
	}
	return senders, nil
}

// Delete scopes by user_id so one user can never remove another's entry.
func (r *watchedSenderRepository) Delete(userID, id string) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&gmaildomain.WatchedSender{}).Error
}
