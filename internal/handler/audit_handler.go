package handler

import (
	"net/http"
	"strings"

	"go-media-cms/internal/model"
	"go-media-cms/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	entries, err := h.service.Query(r.Context(), model.AuditQuery{
		Action:   strings.TrimSpace(query.Get("action")),
		HolderID: int64(parseIntOrDefault(query.Get("holder_id"), 0)),
		Status:   strings.TrimSpace(query.Get("status")),
		Limit:    parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.AuditList{Entries: entries})
}
