package handler

import (
	"net/http"

	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"
	"go-media-cms/internal/service"
)

type VideoHandler struct {
	service *service.ContentService
}

func NewVideoHandler(service *service.ContentService) *VideoHandler {
	return &VideoHandler{service: service}
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	videos, err := h.service.ListVideos(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.VideoList{Videos: videos})
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	video, err := h.service.GetVideo(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, video)
}

func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.VideoRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	video, err := h.service.CreateVideo(r.Context(), middleware.PrincipalFromContext(r.Context()), payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, video)
}

func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.VideoRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	video, err := h.service.UpdateVideo(r.Context(), middleware.PrincipalFromContext(r.Context()), id, payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, video)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteVideo(r.Context(), middleware.PrincipalFromContext(r.Context()), id, middleware.ClientIP(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
