package handler

import (
	"net/http"

	"go-media-cms/internal/middleware"
	"go-media-cms/internal/service"
)

// UserHandler exposes the admin view of another user's sessions.
type UserHandler struct {
	service *service.AuthService
}

func NewUserHandler(service *service.AuthService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.service.UserSessions(r.Context(), middleware.PrincipalFromContext(r.Context()), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list)
}

func (h *UserHandler) RevokeSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.RevokeUserSessions(r.Context(), principal, userID, middleware.ClientIP(r)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"revoked": true, "holder_id": userID})
}
