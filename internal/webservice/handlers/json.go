package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/ubuntu/version-service/internal/webservice/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status code.
// Documented text is sent as is, without HTML escaping.
func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		middleware.Logger(r.Context()).Error("Failed to encode response", "path", r.URL.Path, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		middleware.Logger(r.Context()).Debug("Failed to write response", "path", r.URL.Path, "err", err)
	}
}

// writeError reports a query failure as a 500 with its message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.Logger(r.Context()).Warn("Query failed", "path", r.URL.Path, "err", err)
	writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
