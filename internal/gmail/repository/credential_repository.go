package repository

import (
	"errors"
	"time"

	gmaildomain "campushub-backend/internal/gmail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// credentialRepository implements CredentialRepository
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new instance of credentialRepository
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{
		db: db,
	}
}

// Upsert writes the credential for a user, replacing any existing row.
// The refresh token is only overwritten when the new one is non-empty.
func (r *credentialRepository) Upsert(cred *gmaildomain.GmailCredential) error {
	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}
	cred.CreatedAt = time.Now()
	cred.UpdatedAt = time.Now()

	assignments := map[string]interface{}{
		"access_token": cred.AccessToken,
		"expiry_date":  cred.ExpiryDate,
		"updated_at":   cred.UpdatedAt,
	}
	if cred.RefreshToken != "" {
		assignments["refresh_token"] = cred.RefreshToken
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(cred).Error
}

func (r *credentialRepository) FindByUserID(userID string) (*gmaildomain.GmailCredential, error) {
	var cred gmaildomain.GmailCredential
	err := r.db.Where("user_id = ?", userID).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) UpdateTokens(userID, accessToken, refreshToken string, expiry *time.Time) error {
	updates := map[string]interface{}{
		"access_token": accessToken,
		"expiry_date":  expiry,
		"updated_at":   time.Now(),
	}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	return r.db.Model(&gmaildomain.GmailCredential{}).Where("user_id = ?", userID).Updates(updates).Error
}

func (r *credentialRepository) ListUserIDs() ([]string, error) {
	var userIDs []string
	err := r.db.Model(&gmaildomain.GmailCredential{}).Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *credentialRepository) Delete(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&gmaildomain.GmailCredential{}).Error
}
