package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go-media-cms/internal/model"
)

type HealthCheck func(ctx context.Context) error

// HealthHandler reports 503 as soon as one dependency fails its check.
type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(model.APIResponse{
			Success: false,
			Data:    map[string]any{"checks": results},
			Error:   &model.APIError{Code: "UNHEALTHY", Message: "one or more dependencies are unavailable"},
		})
		return
	}

	writeSuccess(w, status, map[string]any{"checks": results})
}
