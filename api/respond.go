package api

import (
	"encoding/json"
	"net/http"

	"slack-chat/errors"
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

// respondError maps the domain error to a status code. Internal errors are
// logged but answered with a generic message so storage details never leak.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := errors.MapToStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
		message = "internal error"
	}
	s.respondJSON(w, status, errorBody{Error: message})
}
