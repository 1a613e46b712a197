package middleware

import (
	"encoding/json"
	"net/http"

	"go-media-cms/internal/model"
)

// errorEnvelope renders the same {success, error} body the handlers write.
func errorEnvelope(code string, message string) []byte {
	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
	return body
}

func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(errorEnvelope(code, message), '\n'))
}
