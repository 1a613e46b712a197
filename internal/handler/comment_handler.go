package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"
	"go-media-cms/internal/service"
	"go-media-cms/pkg/apierror"
)

type CommentHandler struct {
	service *service.CommentService
}

func NewCommentHandler(service *service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List expects both contentId and contentType query parameters.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawID := strings.TrimSpace(query.Get("contentId"))
	contentID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, apierror.BadRequest("contentId must be an integer", rawID))
		return
	}

	comments, err := h.service.ListByContent(r.Context(), query.Get("contentType"), contentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.CommentList{Comments: comments})
}

func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, comment)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CommentRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.service.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.CommentUpdateRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.service.Update(r.Context(), middleware.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), middleware.ClientIP(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
