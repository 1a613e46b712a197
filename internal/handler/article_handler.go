package handler

import (
	"net/http"

	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"
	"go-media-cms/internal/service"
)

type ArticleHandler struct {
	service *service.ContentService
}

func NewArticleHandler(service *service.ContentService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.ListArticles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.ArticleList{Articles: articles})
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	article, err := h.service.GetArticle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, article)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.ArticleRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	article, err := h.service.CreateArticle(r.Context(), middleware.PrincipalFromContext(r.Context()), payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, article)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ArticleRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	article, err := h.service.UpdateArticle(r.Context(), middleware.PrincipalFromContext(r.Context()), id, payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, article)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteArticle(r.Context(), middleware.PrincipalFromContext(r.Context()), id, middleware.ClientIP(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
