package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/repository"
	"github.com/mercatto/marketplace-api/internal/security"
)

// TokenService issues and rotates the access/refresh token pair. Refresh
// tokens live server-side only as peppered hashes, so a database leak does
// not yield replayable tokens.
type TokenService struct {
	jwtMgr      *security.JWTManager
	sessionRepo repository.SessionRepository
	pepper      string
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, sessionRepo repository.SessionRepository, pepper string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, sessionRepo: sessionRepo, pepper: pepper, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *TokenService) Issue(ctx context.Context, user *domain.User, ua, ip string) (access string, refresh string, err error) {
	access, err = s.jwtMgr.SignAccessToken(user.ID, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.jwtMgr.SignRefreshToken(user.ID, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	hash := security.HashRefreshToken(refresh, s.pepper)
	session := &domain.Session{
		UserID:           user.ID,
		RefreshTokenHash: hash,
		UserAgent:        ua,
		IP:               ip,
		ExpiresAt:        time.Now().Add(s.refreshTTL),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", "", err
	}
	observability.RecordSessionManagementEvent(ctx, "issue", "success")
	return access, refresh, nil
}

// Rotate exchanges a valid refresh token for a fresh pair and revokes the
// old session in the same step. A token that parses but has no live session
// behind it is treated as invalid, not as a server error.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string, userFetcher func(id uint) (*domain.User, error), ua, ip string) (access string, newRefresh string, userID uint, err error) {
	claims, err := s.jwtMgr.ParseRefreshToken(refreshToken)
	if err != nil {
		observability.RecordSessionManagementEvent(ctx, "rotate", "invalid_token")
		return "", "", 0, err
	}
	hash := security.HashRefreshToken(refreshToken, s.pepper)
	session, err := s.sessionRepo.FindValidByHash(hash)
	if err != nil {
		observability.RecordSessionManagementEvent(ctx, "rotate", "no_session")
		return "", "", 0, err
	}
	if err := s.sessionRepo.RevokeByHash(hash); err != nil {
		observability.RecordSessionManagementEvent(ctx, "rotate", "error")
		return "", "", 0, err
	}
	userID, err = claims.UserID()
	if err != nil {
		observability.RecordSessionManagementEvent(ctx, "rotate", "invalid_token")
		return "", "", 0, err
	}
	if session.UserID != userID {
		observability.RecordSessionManagementEvent(ctx, "rotate", "mismatch")
		return "", "", 0, fmt.Errorf("session mismatch")
	}
	user, err := userFetcher(userID)
	if err != nil {
		observability.RecordSessionManagementEvent(ctx, "rotate", "error")
		return "", "", 0, err
	}
	access, newRefresh, err = s.Issue(ctx, user, ua, ip)
	if err != nil {
		return "", "", 0, err
	}
	observability.RecordSessionManagementEvent(ctx, "rotate", "success")
	return access, newRefresh, userID, nil
}

func (s *TokenService) RevokeAll(ctx context.Context, userID uint, reason string) error {
	count, err := s.sessionRepo.RevokeAllForUser(userID)
	if err != nil {
		observability.RecordSessionManagementEvent(ctx, "revoke_all", "error")
		return err
	}
	observability.RecordSessionManagementEvent(ctx, "revoke_all", reason)
	observability.RecordSessionRevokedCount(ctx, reason, count)
	return nil
}
