package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"slack-chat/auth"
	"slack-chat/errors"
	"slack-chat/services"
)

type postMessageRequest struct {
	Content    string `json:"content"`
	Attachment []byte `json:"attachment,omitempty"`
}

type editMessageRequest struct {
	Content string `json:"content"`
}

const defaultSearchLimit = 20

func messageIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		return uuid.Nil, errors.ErrMessageNotFound
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	channelID, err := channelIDFromURL(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var body postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	message, err := s.messages.Post(r.Context(), services.PostMessageCommand{
		ChannelID:  channelID,
		Author:     username,
		Content:    body.Content,
		Attachment: body.Attachment,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, message)
}

// handleListMessages answers the recent tail by default. When a "page"
// parameter is present it switches to fixed-size pages counted from the
// newest message.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	channelID, err := channelIDFromURL(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if r.URL.Query().Has("page") {
		page := queryInt(r, "page", 0)
		size := queryInt(r, "size", 0)
		messages, err := s.messages.Page(channelID, page, size)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, messages)
		return
	}

	messages, err := s.messages.Recent(channelID, queryInt(r, "limit", 0))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, messages)
}

func (s *Server) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	channelID, err := channelIDFromURL(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	terms := r.URL.Query().Get("q")
	if terms == "" {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing q parameter"})
		return
	}

	messages, err := s.messages.Search(r.Context(), channelID, terms, queryInt(r, "limit", defaultSearchLimit))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, messages)
}

func (s *Server) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	messageID, err := messageIDFromURL(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var body editMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	message, err := s.messages.Edit(r.Context(), messageID, body.Content, username)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, message)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	messageID, err := messageIDFromURL(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.messages.Delete(r.Context(), messageID, username); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
