package handler

import (
	"errors"
	"net/http"

	"github.com/mercatto/marketplace-api/internal/http/response"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/repository"
	"github.com/mercatto/marketplace-api/internal/service"
)

type UserHandler struct {
	userSvc service.UserServiceInterface
}

func NewUserHandler(userSvc service.UserServiceInterface) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	u, err := h.userSvc.GetByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load user", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, u)
}

// DeleteMe removes the account along with its products and sessions.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	if err := h.userSvc.DeleteAccount(r.Context(), uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to delete account", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "user.delete",
		ActorUserID: formatUserID(uid),
		TargetType:  "user",
		Action:      "delete",
		Outcome:     "success",
		Reason:      "account_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}
