package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(session *domain.Session) error
	FindValidByHash(hash string) (*domain.Session, error)
	RevokeByHash(hash string) error
	RevokeAllForUser(userID uint) (int64, error)
	DeleteExpired(before time.Time) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(session *domain.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "create", "success")
	return nil
}

func (r *GormSessionRepository) FindValidByHash(hash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.
		Where("refresh_token_hash = ?", hash).
		Where("revoked_at IS NULL").
		Where("expires_at > ?", time.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "session", "find_valid", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "find_valid", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "find_valid", "success")
	return &session, nil
}

func (r *GormSessionRepository) RevokeByHash(hash string) error {
	now := time.Now()
	res := r.db.Model(&domain.Session{}).
		Where("refresh_token_hash = ?", hash).
		Where("revoked_at IS NULL").
		Update("revoked_at", &now)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "revoke", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "session", "revoke", "not_found")
		return ErrSessionNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "revoke", "success")
	return nil
}

func (r *GormSessionRepository) RevokeAllForUser(userID uint) (int64, error) {
	now := time.Now()
	res := r.db.Model(&domain.Session{}).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Update("revoked_at", &now)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "revoke_all", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "revoke_all", "success")
	return res.RowsAffected, nil
}

func (r *GormSessionRepository) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", before).Delete(&domain.Session{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "delete_expired", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "delete_expired", "success")
	return res.RowsAffected, nil
}
