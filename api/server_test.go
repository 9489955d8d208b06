package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"slack-chat/domain"
	"slack-chat/moderation"
	"slack-chat/repositories"
	"slack-chat/services"
)

// setupTestServer wires the real stack over temporary stores so the tests
// exercise the same path as production, minus the network listener.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	log := slog.Default()
	moderator, err := moderation.NewModerator([]string{"badword"}, '*', log)
	require.NoError(t, err)

	userRepo := repositories.NewUserRepository(db)
	channelRepo := repositories.NewChannelRepository(db)
	messageRepo := repositories.NewMessageRepository(db, log)
	searchRepo := repositories.NewSearchRepository(writer)

	server := NewServer(
		services.NewAuthService(userRepo, time.Hour),
		services.NewChannelService(channelRepo),
		services.NewMessageService(messageRepo, channelRepo, searchRepo, moderator, log),
		log,
	)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	return response
}

func decodeBody[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	defer func() { _ = response.Body.Close() }()

	var out T
	require.NoError(t, json.NewDecoder(response.Body).Decode(&out))
	return out
}

func registerAndLogin(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", registerRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "ComplexPass123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", loginRequest{
		Username: username,
		Password: "ComplexPass123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[loginResponse](t, resp).Token
}

func TestAuthEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("should register and login", func(t *testing.T) {
		req := require.New(t)
		token := registerAndLogin(t, ts, "alice")
		req.NotEmpty(token)
	})

	t.Run("should reject a duplicate username with a conflict", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", registerRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "ComplexPass123",
		})
		defer func() { _ = resp.Body.Close() }()
		req.Equal(http.StatusConflict, resp.StatusCode)
	})

	t.Run("should answer wrong password and unknown user identically", func(t *testing.T) {
		req := require.New(t)

		wrongPassword := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", loginRequest{
			Username: "alice",
			Password: "WrongPass123",
		})
		unknownUser := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", loginRequest{
			Username: "nobody",
			Password: "WrongPass123",
		})
		req.Equal(http.StatusUnauthorized, wrongPassword.StatusCode)
		req.Equal(http.StatusUnauthorized, unknownUser.StatusCode)

		first := decodeBody[errorBody](t, wrongPassword)
		second := decodeBody[errorBody](t, unknownUser)
		req.Equal(first.Error, second.Error)
	})

	t.Run("should refuse protected routes without a token", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodGet, ts.URL+"/api/users/me", "", nil)
		defer func() { _ = resp.Body.Close() }()
		req.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("should serve and update the profile", func(t *testing.T) {
		req := require.New(t)
		token := registerAndLogin(t, ts, "bob")

		resp := doJSON(t, http.MethodPut, ts.URL+"/api/users/me", token, profileRequest{
			DisplayName: "Bob the Builder",
			Bio:         "fixing things",
		})
		req.Equal(http.StatusOK, resp.StatusCode)
		view := decodeBody[domain.UserView](t, resp)
		req.Equal("Bob the Builder", view.DisplayName)

		resp = doJSON(t, http.MethodGet, ts.URL+"/api/users/me", token, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		view = decodeBody[domain.UserView](t, resp)
		req.Equal("fixing things", view.Bio)
	})
}

func TestChannelEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken := registerAndLogin(t, ts, "alice")
	bobToken := registerAndLogin(t, ts, "bob")

	var channelID uuid.UUID

	t.Run("should create a channel with the creator as member", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodPost, ts.URL+"/api/channels/", aliceToken, channelRequest{
			Name:        "general",
			Description: "everyone",
		})
		req.Equal(http.StatusCreated, resp.StatusCode)
		view := decodeBody[channelView](t, resp)
		req.Contains(view.Members, "alice")
		req.Equal(1, view.MemberCount)
		channelID = view.ID
	})

	t.Run("should reject a duplicate channel name", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodPost, ts.URL+"/api/channels/", bobToken, channelRequest{
			Name: "general",
		})
		defer func() { _ = resp.Body.Close() }()
		req.Equal(http.StatusConflict, resp.StatusCode)
	})

	t.Run("should let another user join and leave", func(t *testing.T) {
		req := require.New(t)

		joinURL := fmt.Sprintf("%s/api/channels/%s/join", ts.URL, channelID)
		resp := doJSON(t, http.MethodPost, joinURL, bobToken, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		view := decodeBody[channelView](t, resp)
		req.Contains(view.Members, "bob")

		// Joining twice changes nothing
		resp = doJSON(t, http.MethodPost, joinURL, bobToken, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		view = decodeBody[channelView](t, resp)
		req.Equal(2, view.MemberCount)

		leaveURL := fmt.Sprintf("%s/api/channels/%s/leave", ts.URL, channelID)
		resp = doJSON(t, http.MethodPost, leaveURL, bobToken, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		view = decodeBody[channelView](t, resp)
		req.NotContains(view.Members, "bob")
	})

	t.Run("should answer 404 for an unknown channel", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/channels/%s/", ts.URL, uuid.New()), aliceToken, nil)
		defer func() { _ = resp.Body.Close() }()
		req.Equal(http.StatusNotFound, resp.StatusCode)
	})
}

func TestMessageEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken := registerAndLogin(t, ts, "alice")
	bobToken := registerAndLogin(t, ts, "bob")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/channels/", aliceToken, channelRequest{Name: "general"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	channelID := decodeBody[channelView](t, resp).ID

	messagesURL := fmt.Sprintf("%s/api/channels/%s/messages", ts.URL, channelID)

	t.Run("should refuse a post from a non-member", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodPost, messagesURL, bobToken, postMessageRequest{Content: "hi"})
		defer func() { _ = resp.Body.Close() }()
		req.Equal(http.StatusForbidden, resp.StatusCode)
	})

	var firstMessage domain.Message

	t.Run("should post and censor a message from a member", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodPost, messagesURL, aliceToken, postMessageRequest{
			Content: "that is a badword indeed",
		})
		req.Equal(http.StatusCreated, resp.StatusCode)
		firstMessage = decodeBody[domain.Message](t, resp)
		req.Equal("that is a ******* indeed", firstMessage.Content)
		req.Equal(domain.TypeText, firstMessage.Type)
	})

	t.Run("should list messages newest first", func(t *testing.T) {
		req := require.New(t)

		resp := doJSON(t, http.MethodPost, messagesURL, aliceToken, postMessageRequest{Content: "second"})
		req.Equal(http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()

		resp = doJSON(t, http.MethodGet, messagesURL, aliceToken, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		messages := decodeBody[[]domain.Message](t, resp)
		req.Len(messages, 2)
		req.Equal("second", messages[0].Content)
	})

	t.Run("should refuse edits and deletes by non-owners", func(t *testing.T) {
		req := require.New(t)

		joinURL := fmt.Sprintf("%s/api/channels/%s/join", ts.URL, channelID)
		resp := doJSON(t, http.MethodPost, joinURL, bobToken, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		messageURL := fmt.Sprintf("%s/api/messages/%s/", ts.URL, firstMessage.ID)
		resp = doJSON(t, http.MethodPut, messageURL, bobToken, editMessageRequest{Content: "hijack"})
		req.Equal(http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()

		resp = doJSON(t, http.MethodDelete, messageURL, bobToken, nil)
		req.Equal(http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("should let the sender edit and keep creation time", func(t *testing.T) {
		req := require.New(t)

		messageURL := fmt.Sprintf("%s/api/messages/%s/", ts.URL, firstMessage.ID)
		resp := doJSON(t, http.MethodPut, messageURL, aliceToken, editMessageRequest{Content: "revised"})
		req.Equal(http.StatusOK, resp.StatusCode)
		edited := decodeBody[domain.Message](t, resp)
		req.Equal("revised", edited.Content)
		req.True(edited.CreatedAt.Equal(firstMessage.CreatedAt))
		req.True(edited.UpdatedAt.After(edited.CreatedAt))
	})

	t.Run("should find messages through search", func(t *testing.T) {
		req := require.New(t)

		searchURL := messagesURL + "/search?q=revised"
		resp := doJSON(t, http.MethodGet, searchURL, aliceToken, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		messages := decodeBody[[]domain.Message](t, resp)
		req.Len(messages, 1)
		req.Equal(firstMessage.ID, messages[0].ID)
	})

	t.Run("should let the sender delete", func(t *testing.T) {
		req := require.New(t)

		messageURL := fmt.Sprintf("%s/api/messages/%s/", ts.URL, firstMessage.ID)
		resp := doJSON(t, http.MethodDelete, messageURL, aliceToken, nil)
		req.Equal(http.StatusNoContent, resp.StatusCode)
		_ = resp.Body.Close()

		resp = doJSON(t, http.MethodDelete, messageURL, aliceToken, nil)
		req.Equal(http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
