package handler

import (
	"net/http"

	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"
	"go-media-cms/internal/service"
)

type PodcastHandler struct {
	service *service.ContentService
}

func NewPodcastHandler(service *service.ContentService) *PodcastHandler {
	return &PodcastHandler{service: service}
}

func (h *PodcastHandler) List(w http.ResponseWriter, r *http.Request) {
	podcasts, err := h.service.ListPodcasts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.PodcastList{Podcasts: podcasts})
}

func (h *PodcastHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	podcast, err := h.service.GetPodcast(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, podcast)
}

func (h *PodcastHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.PodcastRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	podcast, err := h.service.CreatePodcast(r.Context(), middleware.PrincipalFromContext(r.Context()), payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, podcast)
}

func (h *PodcastHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.PodcastRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	podcast, err := h.service.UpdatePodcast(r.Context(), middleware.PrincipalFromContext(r.Context()), id, payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, podcast)
}

func (h *PodcastHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeletePodcast(r.Context(), middleware.PrincipalFromContext(r.Context()), id, middleware.ClientIP(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
