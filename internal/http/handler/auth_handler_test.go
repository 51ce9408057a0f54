package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/http/middleware"
	"github.com/mercatto/marketplace-api/internal/service"
	servicegomock "github.com/mercatto/marketplace-api/internal/service/gomock"
)

func newAuthRouterForTest(svc service.AuthServiceInterface) chi.Router {
	h := NewAuthHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(testJWTManager()))
			r.Post("/logout", h.Logout)
		})
	})
	return r
}

func loginResultForTest(userID uint) *service.LoginResult {
	return &service.LoginResult{
		User:         &domain.User{ID: userID, Email: "u@example.com", Name: "U"},
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockAuthServiceInterface(ctrl)
	r := newAuthRouterForTest(svc)

	t.Run("success returns 201 with token pair", func(t *testing.T) {
		svc.EXPECT().Register(gomock.Any(), "u@example.com", "U", "Sup3r-Secret-Pass!", gomock.Any(), gomock.Any()).Return(loginResultForTest(1), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"u@example.com","name":"U","password":"Sup3r-Secret-Pass!"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), "access_token") {
			t.Fatalf("expected access token in body: %s", rr.Body.String())
		}
	})

	t.Run("duplicate email maps to 409", func(t *testing.T) {
		svc.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, service.ErrEmailTaken)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"u@example.com","name":"U","password":"Sup3r-Secret-Pass!"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("weak password maps to 400", func(t *testing.T) {
		svc.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, service.ErrWeakPassword)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"u@example.com","name":"U","password":"short"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
		}
	})
}

func TestAuthHandlerLoginAndRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockAuthServiceInterface(ctrl)
	r := newAuthRouterForTest(svc)

	t.Run("bad credentials map to 401", func(t *testing.T) {
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, service.ErrInvalidCredentials)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"u@example.com","password":"wrong"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("valid login returns tokens", func(t *testing.T) {
		svc.EXPECT().Login(gomock.Any(), "u@example.com", "Sup3r-Secret-Pass!", gomock.Any(), gomock.Any()).Return(loginResultForTest(1), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"u@example.com","password":"Sup3r-Secret-Pass!"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("refresh without token maps to 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("refresh rotates tokens", func(t *testing.T) {
		svc.EXPECT().Refresh(gomock.Any(), "old-refresh", gomock.Any(), gomock.Any()).Return(loginResultForTest(1), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
		}
	})
}

func TestAuthHandlerLogout(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockAuthServiceInterface(ctrl)
	r := newAuthRouterForTest(svc)

	t.Run("requires access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("revokes sessions for the token subject", func(t *testing.T) {
		svc.EXPECT().Logout(gomock.Any(), uint(42)).Return(nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+accessTokenForTest(t, 42))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
		}
	})
}
