package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"slack-chat/auth"
	"slack-chat/domain"
	"slack-chat/errors"
)

type channelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
}

// channelView flattens the member set into a plain list for clients.
// Member order is unspecified.
type channelView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedBy   string    `json:"createdBy"`
	Members     []string  `json:"members"`
	MemberCount int       `json:"memberCount"`
}

func toChannelView(channel domain.Channel) channelView {
	return channelView{
		ID:          channel.ID,
		Name:        channel.Name,
		Description: channel.Description,
		IsPrivate:   channel.IsPrivate,
		CreatedBy:   channel.CreatedBy,
		Members:     lo.Keys(channel.Members),
		MemberCount: channel.MemberCount(),
	}
}

func channelIDFromURL(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "channelID"))
	if err != nil {
		return uuid.Nil, errors.ErrChannelNotFound
	}
	return id, nil
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	var body channelRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed body"})
		return
	}

	channel, err := s.channels.Create(body.Name, body.Description, body.IsPrivate, username)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toChannelView(channel))
}

func (s *Server) handleListPublicChannels(w http.ResponseWriter, _ *http.Request) {
	channels, err := s.channels.ListPublic()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, lo.Map(channels, func(c domain.Channel, _ int) channelView {
		return toChannelView(c)
	}))
}

func (s *Server) handleListMyChannels(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		s.respondError(w, errors.ErrInvalidToken)
		return
	}

	channels, err := s.channels.ListForMember(username)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, lo.Map(channels, func(c domain.Channel, _ int) channelView {
		return toChannelView(c)
	}))
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := channelIDFromURL(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	channel, err := s.channels.Get(channelID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toChannelView(channel))
}

func (s *Server) handleJoinChannel(w http.ResponseWriter, r *http.Request) {
	s.handleMembershipChange(w, r, s.channels.Join)
}

func (s *Server) handleLeaveChannel(w http.ResponseWriter, r *http.Request) {
	s.handleMembershipChange(w, r, s.channels.Leave)
}

func (s *Server) handleMembershipChange(
	w http.ResponseWriter,
	r *http.Request,
	change func(uuid.UUID, string) (domain.Channel, error),
) {
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

	channel, err := change(channelID, username)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toChannelView(channel))
}
