package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/mercatto/marketplace-api/internal/config"
	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/repository"
	"github.com/mercatto/marketplace-api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
	ErrEmailTaken         = errors.New("email already registered")
)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
	specialRe   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

type AuthService struct {
	cfg      *config.Config
	tokenSvc *TokenService
	userRepo repository.UserRepository
}

type LoginResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

func NewAuthService(cfg *config.Config, tokenSvc *TokenService, userRepo repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, tokenSvc: tokenSvc, userRepo: userRepo}
}

func (s *AuthService) Register(ctx context.Context, email, name, password, ua, ip string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if err := validateEmail(email); err != nil {
		observability.RecordAuthFlowEvent(ctx, "register", "bad_request")
		return nil, err
	}
	if name == "" {
		observability.RecordAuthFlowEvent(ctx, "register", "bad_request")
		return nil, fmt.Errorf("name is required")
	}
	if err := validatePassword(password); err != nil {
		observability.RecordAuthFlowEvent(ctx, "register", "weak_password")
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "register", "error")
		return nil, err
	}
	user := &domain.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			observability.RecordAuthFlowEvent(ctx, "register", "conflict")
			return nil, ErrEmailTaken
		}
		observability.RecordAuthFlowEvent(ctx, "register", "error")
		return nil, err
	}

	access, refresh, err := s.tokenSvc.Issue(ctx, user, ua, ip)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "register", "error")
		return nil, err
	}
	observability.RecordAuthFlowEvent(ctx, "register", "success")
	return s.loginResult(user, access, refresh), nil
}

func (s *AuthService) Login(ctx context.Context, email, password, ua, ip string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "login", "error")
		return nil, err
	}
	if !ok {
		observability.RecordAuthFlowEvent(ctx, "login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := s.tokenSvc.Issue(ctx, user, ua, ip)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "login", "error")
		return nil, err
	}
	observability.RecordAuthFlowEvent(ctx, "login", "success")
	return s.loginResult(user, access, refresh), nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken, ua, ip string) (*LoginResult, error) {
	access, newRefresh, userID, err := s.tokenSvc.Rotate(ctx, refreshToken, func(id uint) (*domain.User, error) {
		return s.userRepo.FindByID(id)
	}, ua, ip)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "refresh", "failure")
		return nil, err
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "refresh", "error")
		return nil, err
	}
	observability.RecordAuthFlowEvent(ctx, "refresh", "success")
	return s.loginResult(user, access, newRefresh), nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokenSvc.RevokeAll(ctx, userID, "logout"); err != nil {
		observability.RecordAuthFlowEvent(ctx, "logout", "error")
		return err
	}
	observability.RecordAuthFlowEvent(ctx, "logout", "success")
	return nil
}

func (s *AuthService) loginResult(user *domain.User, access, refresh string) *LoginResult {
	return &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.cfg.JWTAccessTTL),
	}
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 12 || !uppercaseRe.MatchString(password) ||
		!lowercaseRe.MatchString(password) || !digitRe.MatchString(password) || !specialRe.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
