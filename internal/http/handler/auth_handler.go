package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mercatto/marketplace-api/internal/http/response"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	result, err := h.authSvc.Register(r.Context(), body.Email, body.Name, body.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		status = "failure"
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Error(w, r, http.StatusConflict, "CONFLICT", "email already registered", nil)
			return
		case errors.Is(err, service.ErrWeakPassword):
			response.Error(w, r, http.StatusBadRequest, "WEAK_PASSWORD", err.Error(), nil)
			return
		default:
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.register",
		ActorUserID: formatUserID(result.User.ID),
		TargetType:  "user",
		Action:      "register",
		Outcome:     "success",
		Reason:      "account_created",
	})
	response.JSON(w, r, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	result, err := h.authSvc.Login(r.Context(), body.Email, body.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		status = "failure"
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "login failed", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.login",
		ActorUserID: formatUserID(result.User.ID),
		TargetType:  "user",
		Action:      "login",
		Outcome:     "success",
		Reason:      "credentials_verified",
	})
	response.JSON(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "refresh", status, time.Since(start))
	}()

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		status = "failure"
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing refresh token", nil)
		return
	}

	result, err := h.authSvc.Refresh(r.Context(), body.RefreshToken, r.UserAgent(), clientIP(r))
	if err != nil {
		status = "failure"
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.refresh",
		ActorUserID: formatUserID(result.User.ID),
		TargetType:  "user",
		Action:      "refresh",
		Outcome:     "success",
		Reason:      "session_rotated",
	})
	response.JSON(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "logout", status, time.Since(start))
	}()

	uid, err := actorID(r)
	if err != nil {
		status = "failure"
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	if err := h.authSvc.Logout(r.Context(), uid); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "logout failed", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.logout",
		ActorUserID: formatUserID(uid),
		TargetType:  "user",
		Action:      "logout",
		Outcome:     "success",
		Reason:      "sessions_revoked",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}
