package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// fail logs err and answers with a JSON error. Server errors hide the cause.
func (s *Storefront) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.log.Error("storefront request failed", err, zap.String("path", r.URL.Path), zap.Int("status", status))
		message = "Something went wrong"
	} else {
		s.log.Warn("storefront request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	sendErrorResponse(w, message, status)
}

func (s *Storefront) serveNotFound(w http.ResponseWriter, r *http.Request) {
	sendErrorResponse(w, "No page at "+r.URL.Path, http.StatusNotFound)
}

func (s *Storefront) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Sessions: s.sessions.Len()}); err != nil {
		s.log.Error("failed to encode health response", err)
	}
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
