package repository

import (
	"time"

	gmaildomain "campushub-backend/internal/gmail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notificationRepository implements NotificationRepository
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of notificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

// CreateIfAbsent relies on the (user_id, gmail_message_id) unique index: the
// insert becomes a no-op when the row already exists, which also makes two
// concurrent sync passes safe because the database rejects the second insert.
func (r *notificationRepository) CreateIfAbsent(n *gmaildomain.EmailNotification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now()

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "gmail_message_id"}},
		DoNothing: true,
	}).Create(n)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) ListByUserID(userID string) ([]gmaildomain.EmailNotification, error) {
	var notifications []gmaildomain.EmailNotification
	err := r.db.Where("user_id = ?", userID).Order("received_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnseen(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&gmaildomain.EmailNotification{}).
		Where("user_id = ? AND seen = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) UnseenBySender(userID string) ([]gmaildomain.SenderUnseenCount, error) {
	var groups []gmaildomain.SenderUnseenCount
	err := r.db.Model(&gmaildomain.EmailNotification{}).
		Select("from_email, from_name, COUNT(*) as count").
		Where("user_id = ? AND seen = ?", userID, false).
		Group("from_email, from_name").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// MarkSeen is scoped by user_id: marking an id owned by another user updates
// zero rows, which is the documented no-op rather than an error.
func (r *notificationRepository) MarkSeen(userID, id string) error {
	return r.db.Model(&gmaildomain.EmailNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("seen", true).Error
}

func (r *notificationRepository) MarkAllSeen(userID string) error {
	return r.db.Model(&gmaildomain.EmailNotification{}).
		Where("user_id = ?", userID).
		Update("seen", true).Error
}
