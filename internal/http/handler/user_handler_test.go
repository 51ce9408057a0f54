package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/http/middleware"
	"github.com/mercatto/marketplace-api/internal/repository"
	"github.com/mercatto/marketplace-api/internal/service"
	servicegomock "github.com/mercatto/marketplace-api/internal/service/gomock"
)

func newUserRouterForTest(svc service.UserServiceInterface) chi.Router {
	h := NewUserHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(testJWTManager()))
		r.Get("/me", h.Me)
		r.Delete("/me", h.DeleteMe)
	})
	return r
}

func TestUserHandlerMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockUserServiceInterface(ctrl)
	r := newUserRouterForTest(svc)

	t.Run("requires auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("returns the token subject's profile", func(t *testing.T) {
		svc.EXPECT().GetByID(gomock.Any(), uint(42)).Return(&domain.User{ID: 42, Email: "u@example.com", Name: "U"}, nil)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessTokenForTest(t, 42))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("deleted user maps to 404", func(t *testing.T) {
		svc.EXPECT().GetByID(gomock.Any(), uint(42)).Return(nil, repository.ErrUserNotFound)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessTokenForTest(t, 42))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
		}
	})
}

func TestUserHandlerDeleteMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockUserServiceInterface(ctrl)
	r := newUserRouterForTest(svc)

	svc.EXPECT().DeleteAccount(gomock.Any(), uint(42)).Return(nil)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenForTest(t, 42))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}
