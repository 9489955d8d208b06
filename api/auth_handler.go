package api

import (
	"encoding/json"
	"net/http"

	"slack-chat/auth"
	"slack-chat/domain"
	"slack-chat/errors"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  domain.UserView `json:"user"`
}

type profileRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	view, err := s.auth.Register(body.Username, body.Email, body.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	token, view, err := s.auth.Login(body.Username, body.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, loginResponse{Token: string(token), User: view})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	if err := s.auth.Logout(username); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	view, err := s.auth.Profile(username)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	var body profileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	view, err := s.auth.UpdateProfile(username, body.DisplayName, body.Bio)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}
